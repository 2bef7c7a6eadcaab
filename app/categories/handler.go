package categories

import (
	"encoding/json"
	"net/http"

	"github.com/mytheresa/go-bulk-cart/app/api"
	"github.com/mytheresa/go-bulk-cart/models"
)

type CategoryResponse struct {
	Code           string `json:"code"`
	Name           string `json:"name"`
	ActiveProducts int64  `json:"activeProducts"`
}

type CategoryProvider interface {
	GetCategorySummaries() ([]models.CategorySummary, error)
	CreateCategory(category *models.Category) error
}

type CategoryHandler struct {
	repo CategoryProvider
}

func NewCategoryHandler(r CategoryProvider) *CategoryHandler {
	return &CategoryHandler{repo: r}
}

func (h *CategoryHandler) HandleGetAll(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.repo.GetCategorySummaries()
	if err != nil {
		api.ErrorResponse(w, http.StatusInternalServerError, "failed to fetch categories")
		return
	}

	response := make([]CategoryResponse, len(summaries))
	for i, c := range summaries {
		response[i] = CategoryResponse{
			Code:           c.Code,
			Name:           c.Name,
			ActiveProducts: c.ActiveProducts,
		}
	}

	api.OKResponse(w, response)
}

func (h *CategoryHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Code string `json:"code"`
		Name string `json:"name"`
	}

	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		api.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	if input.Code == "" || input.Name == "" {
		api.ErrorResponse(w, http.StatusBadRequest, "Missing code or name")
		return
	}

	category := &models.Category{
		Code: input.Code,
		Name: input.Name,
	}

	if err := h.repo.CreateCategory(category); err != nil {
		api.ErrorResponse(w, http.StatusInternalServerError, "Failed to create category")
		return
	}

	api.JSONResponse(w, http.StatusCreated, map[string]string{
		"message": "Category created successfully",
	})
}
