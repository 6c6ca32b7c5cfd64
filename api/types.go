package api

import (
	"time"

	"realty-aggregator/store"
)

// offerResponse is the wire form of a single source offer.
type offerResponse struct {
	ID          uint      `json:"id"`
	ExternalID  string    `json:"external_id"`
	WebsiteName string    `json:"website_name"`
	Title       string    `json:"title"`
	Price       int       `json:"price"`
	URL         string    `json:"url"`
	Address     string    `json:"address"`
	District    string    `json:"district"`
	Area        float64   `json:"area"`
	Rooms       int       `json:"rooms"`
	DateParsed  time.Time `json:"date_parsed"`
}

// productResponse is the wire form of a deduplicated product with its offers.
type productResponse struct {
	ID               uint              `json:"id"`
	CanonicalTitle   string            `json:"canonical_title"`
	CanonicalAddress string            `json:"canonical_address"`
	District         string            `json:"district"`
	Rooms            int               `json:"rooms"`
	Area             float64           `json:"area"`
	PropertyType     string            `json:"property_type"`
	ImageURL         string            `json:"image_url"`
	MinPrice         int               `json:"min_price"`
	SourceCount      int               `json:"source_count"`
	Offers           []offerResponse   `json:"offers"`
	Attributes       map[string]string `json:"attributes,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func toOfferResponse(o *store.Offer) offerResponse {
	return offerResponse{
		ID:          o.ID,
		ExternalID:  o.ExternalID,
		WebsiteName: o.WebsiteName,
		Title:       o.Title,
		Price:       o.Price,
		URL:         o.URL,
		Address:     o.Address,
		District:    o.District,
		Area:        o.Area,
		Rooms:       o.Rooms,
		DateParsed:  o.DateParsed,
	}
}

func toProductResponse(p *store.Product) productResponse {
	resp := productResponse{
		ID:               p.ID,
		CanonicalTitle:   p.CanonicalTitle,
		CanonicalAddress: p.CanonicalAddress,
		District:         p.District,
		Rooms:            p.Rooms,
		Area:             p.Area,
		PropertyType:     p.PropertyType,
		ImageURL:         p.ImageURL,
		MinPrice:         p.MinPrice,
		SourceCount:      len(p.Offers),
		Offers:           make([]offerResponse, 0, len(p.Offers)),
	}
	for i := range p.Offers {
		resp.Offers = append(resp.Offers, toOfferResponse(&p.Offers[i]))
	}
	if len(p.Attributes) > 0 {
		resp.Attributes = make(map[string]string, len(p.Attributes))
		for _, a := range p.Attributes {
			resp.Attributes[a.AttributeName] = a.AttributeValue
		}
	}
	return resp
}
