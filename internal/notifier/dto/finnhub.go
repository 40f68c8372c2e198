package dto

// StockSearchResponse is the payload returned by the symbol search endpoint.
type StockSearchResponse struct {
	Count  int                 `json:"count"`
	Result []StockSearchResult `json:"result"`
}

// StockSearchResult is one match from the symbol search endpoint.
type StockSearchResult struct {
	Description   string `json:"description"`
	DisplaySymbol string `json:"displaySymbol"`
	Symbol        string `json:"symbol"`
	Type          string `json:"type"`
}

// CompanyProfile is the payload returned by the company profile endpoint.
type CompanyProfile struct {
	Country              string  `json:"country"`
	Currency             string  `json:"currency"`
	Exchange             string  `json:"exchange"`
	IPO                  string  `json:"ipo"`
	MarketCapitalization float64 `json:"marketCapitalization"`
	Name                 string  `json:"name"`
	Ticker               string  `json:"ticker"`
	WebURL               string  `json:"weburl"`
	Logo                 string  `json:"logo"`
	Industry             string  `json:"finnhubIndustry"`
}
