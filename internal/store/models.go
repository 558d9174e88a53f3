package store

import (
	"time"

	"github.com/google/uuid"
)

type Mode string

const (
	ModeHome  Mode = "Home"
	ModeAway  Mode = "Away"
	ModeNight Mode = "Night"
)

// Valid reports whether m is one of the known household modes.
func (m Mode) Valid() bool {
	switch m {
	case ModeHome, ModeAway, ModeNight:
		return true
	default:
		return false
	}
}

const (
	DefaultTemperature = 24.0
	DefaultHumidity    = 45.0
	DefaultMode        = ModeHome

	DefaultItemQuantity = 1.0
	DefaultItemUnit     = "pcs"
)

// MaxFamilyNameLength matches the width of families.name.
const MaxFamilyNameLength = 128

// Family is the tenant record. The name is the primary key; there is no surrogate id.
type Family struct {
	Name        string    `json:"name" gorm:"primaryKey;type:varchar(128)"`
	Lights      bool      `json:"lights" gorm:"not null"`
	Temperature float64   `json:"temperature" gorm:"not null"`
	Humidity    float64   `json:"humidity" gorm:"not null"`
	Mode        Mode      `json:"mode" gorm:"type:varchar(16);not null"`
	CreatedAt   time.Time `json:"-"`
	UpdatedAt   time.Time `json:"-"`
}

func (Family) TableName() string { return "families" }

func NewFamily(name string) *Family {
	return &Family{
		Name:        name,
		Lights:      false,
		Temperature: DefaultTemperature,
		Humidity:    DefaultHumidity,
		Mode:        DefaultMode,
	}
}

type Item struct {
	ID         uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Name       string    `json:"name" gorm:"not null;index"`
	Quantity   float64   `json:"quantity" gorm:"not null"`
	Unit       string    `json:"unit"`
	Location   string    `json:"location"`
	Category   string    `json:"category"`
	FamilyName string    `json:"-" gorm:"type:varchar(128);not null;index"`
	Family     *Family   `json:"-" gorm:"foreignKey:FamilyName;references:Name;constraint:OnDelete:CASCADE"`
	CreatedAt  time.Time `json:"-"`
	UpdatedAt  time.Time `json:"-"`
}

func (Item) TableName() string { return "items" }

type Note struct {
	// ID is a v7 UUID, so ids sort in creation order.
	ID         uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Content    string    `json:"content" gorm:"not null"`
	CreatedAt  time.Time `json:"created_at" gorm:"not null;index"`
	FamilyName string    `json:"-" gorm:"type:varchar(128);not null;index"`
	Family     *Family   `json:"-" gorm:"foreignKey:FamilyName;references:Name;constraint:OnDelete:CASCADE"`
}

func (Note) TableName() string { return "notes" }

// StatePatch is a partial update of a family's device and environment state.
// Nil fields are left unchanged.
type StatePatch struct {
	Lights      *bool
	Temperature *float64
	Humidity    *float64
	Mode        *Mode
}

func (p StatePatch) columns() map[string]any {
	cols := map[string]any{}
	if p.Lights != nil {
		cols["lights"] = *p.Lights
	}
	if p.Temperature != nil {
		cols["temperature"] = *p.Temperature
	}
	if p.Humidity != nil {
		cols["humidity"] = *p.Humidity
	}
	if p.Mode != nil {
		cols["mode"] = *p.Mode
	}
	return cols
}

// ItemFilter narrows ListItems. The zero value lists everything.
type ItemFilter struct {
	// Query matches name or location, case-insensitively.
	Query string
	// MaxQuantity keeps items whose quantity is at or below the bound.
	MaxQuantity *float64
}
