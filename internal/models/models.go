package models

import "time"

const (
	SpotStatusApproved = "approved"
	SpotStatusPending  = "pending"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PhotoURL     string    `json:"photoUrl,omitempty"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Spot is one iftar listing. Date is an ISO calendar date (YYYY-MM-DD) or
// empty when the submitter did not give one.
type Spot struct {
	ID             string    `json:"id"`
	MasjidName     string    `json:"masjidName"`
	Area           string    `json:"area"`
	AreaDetail     string    `json:"areaDetail,omitempty"`
	Date           string    `json:"date,omitempty"`
	Items          []string  `json:"items"`
	ItemDisplay    string    `json:"itemDisplay,omitempty"`
	Phone          string    `json:"phone,omitempty"`
	MapLink        string    `json:"mapLink,omitempty"`
	Lat            *float64  `json:"lat,omitempty"`
	Lng            *float64  `json:"lng,omitempty"`
	CreatedBy      string    `json:"createdBy,omitempty"`
	CreatedByEmail string    `json:"createdByEmail,omitempty"`
	RoleAtCreation string    `json:"roleAtCreation"`
	Likes          []string  `json:"likes"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// PrimaryItem returns the first item key, or "".
func (s Spot) PrimaryItem() string {
	if len(s.Items) == 0 {
		return ""
	}
	return s.Items[0]
}

// SpotPatch carries a partial spot update; nil fields are left untouched.
type SpotPatch struct {
	MasjidName  *string   `json:"masjidName" validate:"omitempty,min=1,max=120"`
	Area        *string   `json:"area" validate:"omitempty,min=1,max=120"`
	AreaDetail  *string   `json:"areaDetail" validate:"omitempty,max=300"`
	Date        *string   `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Items       *[]string `json:"items" validate:"omitempty,min=1,max=10,dive,min=1,max=60"`
	ItemDisplay *string   `json:"itemDisplay" validate:"omitempty,max=60"`
	Phone       *string   `json:"phone" validate:"omitempty,max=32"`
	MapLink     *string   `json:"mapLink" validate:"omitempty,max=2048"`
	Lat         *float64  `json:"lat" validate:"omitempty,gte=-90,lte=90"`
	Lng         *float64  `json:"lng" validate:"omitempty,gte=-180,lte=180"`
}

type Comment struct {
	ID        string    `json:"id"`
	SpotID    string    `json:"spotId"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Review is a user's rating of the service itself, not of a spot.
type Review struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Comment   string    `json:"comment"`
	Rating    int       `json:"rating"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
