package types

import (
	"time"

	"github.com/google/uuid"
)

type FundCategory string

const (
	FundCategoryConservative FundCategory = "Conservador"
	FundCategoryModerate     FundCategory = "Moderado"
	FundCategoryDynamic      FundCategory = "Dinâmico"
)

// Fund is a retirement savings fund (PPR) whose quotes feed the simulator.
type Fund struct {
	Id        uuid.UUID    `json:"id"`
	Name      string       `json:"name"`
	Manager   string       `json:"manager"`
	ISIN      string       `json:"isin"`
	Category  FundCategory `json:"category"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
}
