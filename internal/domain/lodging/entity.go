package lodging

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// State は宿泊施設の公開状態を表す
type State string

const (
	StateActive  State = "active"
	StateRetired State = "retired"
)

// Lodging は宿泊施設エンティティを表す
type Lodging struct {
	ID            string
	HostID        string
	Name          string
	MaxCapacity   int
	PricePerNight decimal.Decimal
	State         State
	RetiredAt     *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// NewLodging は新しい宿泊施設を公開状態で作成する
func NewLodging(hostID, name string, maxCapacity int, pricePerNight decimal.Decimal, now time.Time) *Lodging {
	return &Lodging{
		HostID:        hostID,
		Name:          strings.TrimSpace(name),
		MaxCapacity:   maxCapacity,
		PricePerNight: pricePerNight.Round(2),
		State:         StateActive,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// IsActive は予約を受け付けられるかを返す
func (l *Lodging) IsActive() bool {
	return l.State == StateActive
}

// IsHostedBy は指定ユーザーがホストかを返す
func (l *Lodging) IsHostedBy(userID string) bool {
	return userID != "" && l.HostID == userID
}

// Fits は人数が定員以内かを返す
func (l *Lodging) Fits(guestCount int) bool {
	return guestCount <= l.MaxCapacity
}

// Quote は宿泊数分の基本料金を返す
func (l *Lodging) Quote(nights int) decimal.Decimal {
	return l.PricePerNight.Mul(decimal.NewFromInt(int64(nights))).Round(2)
}

// Retire は宿泊施設を退役させる。唯一の状態遷移
// 退役を妨げる予約がないことの確認は呼び出し側がロック下で行う
func (l *Lodging) Retire(now time.Time) error {
	if l.State == StateRetired {
		return ErrLodgingAlreadyRetired
	}
	l.State = StateRetired
	l.RetiredAt = &now
	l.UpdatedAt = now
	return nil
}

// Validate は宿泊施設の検証を行う
func (l *Lodging) Validate() error {
	if l.HostID == "" {
		return ErrHostIDRequired
	}
	if l.Name == "" {
		return ErrLodgingNameRequired
	}
	if l.MaxCapacity < 1 {
		return ErrInvalidMaxCapacity
	}
	if !l.PricePerNight.IsPositive() {
		return ErrInvalidPricePerNight
	}
	return nil
}
