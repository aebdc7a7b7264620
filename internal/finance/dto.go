package finance

// CreateCountryRequest registers a country with its fiscal rates.
type CreateCountryRequest struct {
	Code         string  `json:"code" validate:"required"`
	Name         string  `json:"name" validate:"required"`
	CorporateTax float64 `json:"corporate_tax"`
	SocialRate   float64 `json:"social_rate"`
}

// CreateEntryRequest records a month of manual accounting figures.
type CreateEntryRequest struct {
	Month       string  `json:"month" validate:"required"`
	CountryCode string  `json:"country_code" validate:"required"`
	Incomes     float64 `json:"incomes"`
	Expenses    float64 `json:"expenses"`
	Salaries    float64 `json:"salaries"`
}

// EntryReceipt echoes a created entry with its derived fiscal estimate.
type EntryReceipt struct {
	Month       string        `json:"month"`
	CountryCode string        `json:"country_code"`
	Inputs      EntryInputs   `json:"inputs"`
	Computed    EntryComputed `json:"computed"`
	LegalNotice string        `json:"legal_notice"`
}

// EntryInputs restates the figures the receipt was computed from.
type EntryInputs struct {
	Incomes  float64 `json:"incomes"`
	Expenses float64 `json:"expenses"`
	Salaries float64 `json:"salaries"`
}

// EntryComputed is the advisory estimate attached to an entry receipt.
type EntryComputed struct {
	GrossProfit  float64 `json:"gross_profit"`
	CorporateTax float64 `json:"corporate_tax"`
	SocialCosts  float64 `json:"social_costs"`
	NetResult    float64 `json:"net_result"`
}
