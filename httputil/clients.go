package httputil

import (
	"net/http"
	"time"
)

type Clients struct {
	TourAPI  *http.Client // data.go.kr open data endpoints
	External *http.Client // Kakao auth, image fetches
}

func NewClients() *Clients {
	return &Clients{
		TourAPI:  &http.Client{Timeout: 10 * time.Second},
		External: &http.Client{Timeout: 30 * time.Second},
	}
}
