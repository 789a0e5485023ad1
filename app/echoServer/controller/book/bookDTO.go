package book

type CreateBookReq struct {
	Title       string  `json:"title" validate:"required"`
	Author      string  `json:"author" validate:"required"`
	Genre       string  `json:"genre" validate:"required"`
	Rating      float64 `json:"rating" validate:"gte=0,lte=5"`
	TotalCopies int     `json:"total_copies" validate:"required,gt=0"`
	Description string  `json:"description"`
	CoverColor  string  `json:"cover_color"`
	CoverURL    string  `json:"cover_url"`
	VideoURL    string  `json:"video_url"`
	Summary     string  `json:"summary"`
}

type UpdateBookReq struct {
	Title       string  `json:"title" validate:"required"`
	Author      string  `json:"author" validate:"required"`
	Genre       string  `json:"genre" validate:"required"`
	Rating      float64 `json:"rating" validate:"gte=0,lte=5"`
	Description string  `json:"description"`
	CoverColor  string  `json:"cover_color"`
	CoverURL    string  `json:"cover_url"`
	VideoURL    string  `json:"video_url"`
	Summary     string  `json:"summary"`
}

type EditCapacityReq struct {
	TotalCopies int `json:"total_copies" validate:"gte=0"`
}
