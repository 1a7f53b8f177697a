package attempt

import "errors"

var (
	// ErrIPBlocked 送信元IPが一時ブロック中のエラー
	ErrIPBlocked = errors.New("too many failed attempts, try again later")
)
