package services

import (
	"database/sql"
	"errors"

	"scanlane/internal/domain"
	"scanlane/internal/repos"
)

type AvailabilityService struct {
	Catalog *repos.CatalogRepo
	LowAt   int
}

func NewAvailabilityService(catalog *repos.CatalogRepo, lowAt int) *AvailabilityService {
	if lowAt <= 0 {
		lowAt = 5
	}
	return &AvailabilityService{Catalog: catalog, LowAt: lowAt}
}

// Check converts live stock into IN_STOCK / LOW_STOCK / OUT_OF_STOCK.
func (s *AvailabilityService) Check(productID string) (domain.Availability, error) {
	p, err := s.Catalog.Get(productID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Availability{Status: "OUT_OF_STOCK", Qty: 0}, nil
		}
		return domain.Availability{}, err
	}

	status := "OUT_OF_STOCK"
	switch {
	case p.Stock >= s.LowAt:
		status = "IN_STOCK"
	case p.Stock > 0:
		status = "LOW_STOCK"
	}
	return domain.Availability{Status: status, Qty: p.Stock}, nil
}
