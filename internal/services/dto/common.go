package dto

// PaginatedResponse - общий ответ со списком
type PaginatedResponse struct {
	Data       interface{} `json:"data"`
	Total      int64       `json:"total"`
	Page       int         `json:"page"`
	PageSize   int         `json:"page_size"`
	TotalPages int         `json:"total_pages"`
	HasMore    bool        `json:"has_more"`
}

func NewPaginatedResponse(data interface{}, total int64, page, pageSize int) *PaginatedResponse {
	page = max(1, min(page, MaxPage))
	totalPages := 0
	if pageSize > 0 {
		totalPages = int((total + int64(pageSize) - 1) / int64(pageSize))
	}
	return &PaginatedResponse{
		Data:       data,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
		HasMore:    page < totalPages,
	}
}

// MaxPage ограничивает номер страницы, чтобы (page-1)*pageSize не переполнялся
const MaxPage = 10000

// Offset - смещение для page/pageSize (page с единицы)
func Offset(page, pageSize int) int {
	if page < 1 || pageSize < 1 {
		return 0
	}
	return (min(page, MaxPage) - 1) * pageSize
}

// StatusResponse - ответ без данных
type StatusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}
