package models

import "time"

// AdminArtifact is a bilingual artifact record managed through the admin
// console. Optional fields are nil when absent and serialize as null.
type AdminArtifact struct {
	ID         string `json:"_id"`
	ArtifactID string `json:"artifact_id"`

	TitleEN       string `json:"title_en"`
	TitleSI       string `json:"title_si"`
	OriginEN      string `json:"origin_en"`
	OriginSI      string `json:"origin_si"`
	Year          string `json:"year"`
	CategoryEN    string `json:"category_en"`
	CategorySI    string `json:"category_si"`
	DescriptionEN string `json:"description_en"`
	DescriptionSI string `json:"description_si"`

	MaterialEN             *string `json:"material_en"`
	MaterialSI             *string `json:"material_si"`
	DimensionsEN           *string `json:"dimensions_en"`
	DimensionsSI           *string `json:"dimensions_si"`
	CulturalSignificanceEN *string `json:"culturalSignificance_en"`
	CulturalSignificanceSI *string `json:"culturalSignificance_si"`
	GalleryEN              *string `json:"gallery_en"`
	GallerySI              *string `json:"gallery_si"`

	ImageURLs []string  `json:"imageUrls"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AdminInput is the request body for admin create and update calls.
type AdminInput struct {
	TitleEN       string `json:"title_en"`
	TitleSI       string `json:"title_si"`
	OriginEN      string `json:"origin_en"`
	OriginSI      string `json:"origin_si"`
	Year          string `json:"year"`
	CategoryEN    string `json:"category_en"`
	CategorySI    string `json:"category_si"`
	DescriptionEN string `json:"description_en"`
	DescriptionSI string `json:"description_si"`

	MaterialEN             string `json:"material_en"`
	MaterialSI             string `json:"material_si"`
	DimensionsEN           string `json:"dimensions_en"`
	DimensionsSI           string `json:"dimensions_si"`
	CulturalSignificanceEN string `json:"culturalSignificance_en"`
	CulturalSignificanceSI string `json:"culturalSignificance_si"`
	GalleryEN              string `json:"gallery_en"`
	GallerySI              string `json:"gallery_si"`

	ImageURLs []string `json:"imageUrls"`
}

// NewAdminArtifact builds a record from a validated input. Identifiers and
// timestamps are assigned by the store.
func NewAdminArtifact(in AdminInput) AdminArtifact {
	a := AdminArtifact{
		TitleEN:       in.TitleEN,
		TitleSI:       in.TitleSI,
		OriginEN:      in.OriginEN,
		OriginSI:      in.OriginSI,
		Year:          in.Year,
		CategoryEN:    in.CategoryEN,
		CategorySI:    in.CategorySI,
		DescriptionEN: in.DescriptionEN,
		DescriptionSI: in.DescriptionSI,
		ImageURLs:     append([]string(nil), in.ImageURLs...),
	}
	a.setOptional(in)
	return a
}

// ApplyUpdate merges an update into the record. Blank required fields keep
// their stored value; optional fields are always replaced, blank meaning null.
func (a *AdminArtifact) ApplyUpdate(in AdminInput) {
	keep := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	keep(&a.TitleEN, in.TitleEN)
	keep(&a.TitleSI, in.TitleSI)
	keep(&a.OriginEN, in.OriginEN)
	keep(&a.OriginSI, in.OriginSI)
	keep(&a.Year, in.Year)
	keep(&a.CategoryEN, in.CategoryEN)
	keep(&a.CategorySI, in.CategorySI)
	keep(&a.DescriptionEN, in.DescriptionEN)
	keep(&a.DescriptionSI, in.DescriptionSI)
	if len(in.ImageURLs) > 0 {
		a.ImageURLs = append([]string(nil), in.ImageURLs...)
	}
	a.setOptional(in)
}

func (a *AdminArtifact) setOptional(in AdminInput) {
	a.MaterialEN = nullable(in.MaterialEN)
	a.MaterialSI = nullable(in.MaterialSI)
	a.DimensionsEN = nullable(in.DimensionsEN)
	a.DimensionsSI = nullable(in.DimensionsSI)
	a.CulturalSignificanceEN = nullable(in.CulturalSignificanceEN)
	a.CulturalSignificanceSI = nullable(in.CulturalSignificanceSI)
	a.GalleryEN = nullable(in.GalleryEN)
	a.GallerySI = nullable(in.GallerySI)
}

func nullable(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
