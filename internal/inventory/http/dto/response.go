package dto

import (
	"time"

	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/database"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/inventory/domain"
)

// ProductResponse represents a catalog entry in API responses
type ProductResponse struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	PriceInCents     int64     `json:"priceInCents"`
	AvailableCount   int       `json:"availableCount"`
	UnavailableCount int       `json:"unavailableCount"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// ProductListResponse is one page of products
type ProductListResponse struct {
	Data       []ProductResponse `json:"data"`
	TotalCount int               `json:"totalCount"`
	Offset     int               `json:"offset"`
	Limit      int               `json:"limit"`
}

// MapProductToResponse converts a domain product to an API response
func MapProductToResponse(p *domain.Product) ProductResponse {
	return ProductResponse{
		ID:               p.ID.String(),
		Name:             p.Name,
		PriceInCents:     p.PriceInCents,
		AvailableCount:   p.AvailableCount,
		UnavailableCount: p.UnavailableCount,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
}

// MapProductsToListResponse converts a page of products to an API response
func MapProductsToListResponse(page *database.PagedResult[*domain.Product]) ProductListResponse {
	data := make([]ProductResponse, 0, len(page.Items))
	for _, p := range page.Items {
		data = append(data, MapProductToResponse(p))
	}
	return ProductListResponse{
		Data:       data,
		TotalCount: page.TotalCount,
		Offset:     page.Offset,
		Limit:      page.Limit,
	}
}
