package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// Number statuses reported by the raffle API
const (
	NumberFree     = "free"
	NumberReserved = "reserved"
	NumberPaid     = "paid"
	NumberWinner   = "winner"
)

// Raffle represents a prize campaign as returned by the raffle API
type Raffle struct {
	ID           string          `json:"id"`
	Title        string          `json:"title"`
	ImageURL     string          `json:"imageUrl"`
	UserID       string          `json:"user_id"`
	Price        decimal.Decimal `json:"price"`
	Numbers      int             `json:"numbers"`
	ArrayNumbers []NumberRecord  `json:"array_numbers"`
	Description  string          `json:"description"`
	Status       int             `json:"status"`
	Gallery      Gallery         `json:"gallery"`
	EndDate      string          `json:"endDate"`
	Winner       string          `json:"winner"`
	Confession   *string         `json:"confession"`
	CreatedAt    string          `json:"created_at"`
	UpdatedAt    string          `json:"updated_at"`
	Participants int             `json:"participants"`
}

// NumberRecord is the status of one ticket number in a raffle
type NumberRecord struct {
	ID          int    `json:"id"`
	Participant string `json:"participant"`
	Winner      bool   `json:"winner"`
	Status      string `json:"status"`
}

// GalleryItem is one image of the raffle gallery
type GalleryItem struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Gallery normalizes the API's gallery field, which arrives either as a JSON
// array or as a string holding that array.
type Gallery []GalleryItem

// UnmarshalJSON accepts an array, a JSON-encoded string of an array, an empty
// string or null.
func (g *Gallery) UnmarshalJSON(data []byte) error {
	gallery, err := ParseGallery(data)
	if err != nil {
		return err
	}
	*g = gallery
	return nil
}

// ParseGallery decodes the raw gallery field. Missing, null and empty values
// give an empty gallery.
func ParseGallery(data []byte) (Gallery, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return Gallery{}, nil
	}

	switch data[0] {
	case '[':
		var items []GalleryItem
		if err := json.Unmarshal(data, &items); err != nil {
			return nil, fmt.Errorf("decode gallery array: %w", err)
		}
		return items, nil
	case '"':
		var raw string
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("decode gallery string: %w", err)
		}
		raw = strings.TrimSpace(raw)
		if raw == "" || raw == "null" {
			return Gallery{}, nil
		}
		var items []GalleryItem
		if err := json.Unmarshal([]byte(raw), &items); err != nil {
			return nil, fmt.Errorf("decode embedded gallery: %w", err)
		}
		return items, nil
	}

	return nil, fmt.Errorf("decode gallery: unexpected JSON %q", truncate(string(data), 32))
}

// OccupancyPercentage returns the share of numbers that are no longer free,
// rounded to two decimals.
func (r *Raffle) OccupancyPercentage() float64 {
	total := len(r.ArrayNumbers)
	if total == 0 {
		return 0
	}

	free := 0
	for _, n := range r.ArrayNumbers {
		if n.Status == NumberFree {
			free++
		}
	}

	occupied := 100 - float64(free)/float64(total)*100
	return math.Round(occupied*100) / 100
}

// Winners returns up to limit numbers already awarded an instant prize
func (r *Raffle) Winners(limit int) []NumberRecord {
	winners := make([]NumberRecord, 0, limit)
	for _, n := range r.ArrayNumbers {
		if len(winners) == limit {
			break
		}
		if n.Status == NumberWinner {
			winners = append(winners, n)
		}
	}
	return winners
}

// UnclaimedPrizeSlots returns how many of the limit prize slots have no winner yet
func (r *Raffle) UnclaimedPrizeSlots(limit int) int {
	remaining := limit - len(r.Winners(limit))
	if remaining < 0 {
		return 0
	}
	return remaining
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
