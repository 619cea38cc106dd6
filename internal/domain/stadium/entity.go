package stadium

import "time"

// SeatTier は座席の等級を表す
type SeatTier string

const (
	TierStandard SeatTier = "standard"
	TierPremium  SeatTier = "premium"
	TierVIP      SeatTier = "vip"
)

// PriceFor は基準価格から等級に応じた座席価格を計算する
func (t SeatTier) PriceFor(basePrice int) int {
	switch t {
	case TierVIP:
		return basePrice * 3
	case TierPremium:
		return basePrice * 2
	default:
		return basePrice
	}
}

// Seat はスタジアム内の物理座席を表す
type Seat struct {
	ID        string   `json:"id"`
	Number    string   `json:"number"`
	Tier      SeatTier `json:"tier"`
	XPosition int      `json:"x_position"`
	YPosition int      `json:"y_position"`
}

// SeatRow は座席の列を表す
type SeatRow struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Seats []Seat `json:"seats"`
}

// Section はスタジアムのセクションを表す
type Section struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	SeatRows    []SeatRow `json:"seat_rows"`
}

// Stadium はスタジアムエンティティを表す
// 座席トポロジー（セクション → 列 → 座席）を保持する
type Stadium struct {
	ID        string
	Name      string
	Location  string
	Capacity  int
	Sections  []Section
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewStadium は新しいスタジアムを作成する
func NewStadium(name, location string, capacity int, sections []Section) *Stadium {
	now := time.Now()
	return &Stadium{
		Name:      name,
		Location:  location,
		Capacity:  capacity,
		Sections:  sections,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// SeatDetail は座席の所在情報を表す
type SeatDetail struct {
	Seat    Seat
	Section string
	Row     string
}

// AllSeats はスタジアム内の全座席を所在情報付きで返す
func (s *Stadium) AllSeats() []SeatDetail {
	var details []SeatDetail
	for _, sec := range s.Sections {
		for _, row := range sec.SeatRows {
			for _, seat := range row.Seats {
				details = append(details, SeatDetail{Seat: seat, Section: sec.Name, Row: row.Name})
			}
		}
	}
	return details
}

// SeatDetailMap は座席IDから所在情報を引ける辞書を返す
func (s *Stadium) SeatDetailMap() map[string]SeatDetail {
	m := make(map[string]SeatDetail)
	for _, d := range s.AllSeats() {
		m[d.Seat.ID] = d
	}
	return m
}

// Validate はスタジアムの検証を行う
func (s *Stadium) Validate() error {
	if s.Name == "" {
		return ErrStadiumNameRequired
	}
	if len(s.Sections) == 0 {
		return ErrSectionsRequired
	}
	return nil
}
