package reservation

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout は宿泊日の入出力フォーマット
const DateLayout = "2006-01-02"

// ParseDate は YYYY-MM-DD 形式の文字列をUTCの0時として解釈する
func ParseDate(s string) (time.Time, error) {
	d, err := time.ParseInLocation(DateLayout, strings.TrimSpace(s), time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return d, nil
}

// DateOf は時刻を含む値を暦日（UTCの0時）に切り詰める
func DateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// FormatDate は暦日を YYYY-MM-DD で返す
func FormatDate(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

// Stay は半開区間 [CheckIn, CheckOut) の宿泊期間
type Stay struct {
	CheckIn  time.Time
	CheckOut time.Time
}

// NewStay は宿泊期間を作成する。チェックアウトはチェックインより後でなければならない
func NewStay(checkIn, checkOut time.Time) (Stay, error) {
	s := Stay{CheckIn: DateOf(checkIn), CheckOut: DateOf(checkOut)}
	if !s.CheckOut.After(s.CheckIn) {
		return Stay{}, ErrInvalidStayRange
	}
	return s, nil
}

// ParseStay は文字列の日付ペアから宿泊期間を作成する
func ParseStay(checkIn, checkOut string) (Stay, error) {
	in, err := ParseDate(checkIn)
	if err != nil {
		return Stay{}, err
	}
	out, err := ParseDate(checkOut)
	if err != nil {
		return Stay{}, err
	}
	return NewStay(in, out)
}

// Nights は宿泊数を返す
func (s Stay) Nights() int {
	return int(s.CheckOut.Sub(s.CheckIn).Hours() / 24)
}

// Overlaps は2つの期間が1日以上重なるかを返す
// [a1,a2) と [b1,b2) は a1 < b2 かつ b1 < a2 のとき重なる。連泊の受け渡し日は重ならない
func (s Stay) Overlaps(o Stay) bool {
	return s.CheckIn.Before(o.CheckOut) && o.CheckIn.Before(s.CheckOut)
}

func (s Stay) String() string {
	return "[" + FormatDate(s.CheckIn) + ", " + FormatDate(s.CheckOut) + ")"
}
