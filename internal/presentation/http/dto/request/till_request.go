package request

// SetDenominationCountRequest replaces the count held for a denomination
type SetDenominationCountRequest struct {
	Count *int `json:"count" binding:"required,min=0"`
}

// RestockDenominationRequest adds notes or coins to the till
type RestockDenominationRequest struct {
	Count int `json:"count" binding:"required,gt=0"`
}
