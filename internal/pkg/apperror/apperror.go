package apperror

import "errors"

// Kind はエラーの分類を表す
type Kind string

const (
	KindInternal   Kind = "internal"
	KindValidation Kind = "validation"
	KindNotFound   Kind = "not_found"
	KindConflict   Kind = "conflict"
	KindState      Kind = "state"
	KindForbidden  Kind = "forbidden"
)

// Error は分類付きのドメインエラー
// 各ドメインの errors.go でセンチネルとして宣言し、errors.Is で比較する
type Error struct {
	Kind    Kind
	Message string
}

// New は新しいドメインエラーを作成する
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func (e *Error) Error() string {
	return e.Message
}

// KindOf はエラーチェーンからKindを取り出す。ドメインエラーでなければ KindInternal
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}

// Is はエラーチェーンに指定Kindのドメインエラーが含まれるかを返す
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
