package config

import "errors"

// このパッケージのエラー種別。呼び出し元はerrors.Isで判別する。
var (
	// ErrInvalidConfig は設定値が不正な場合に返される。
	ErrInvalidConfig = errors.New("設定値が不正です")
	// ErrLoadConfig は設定ソースの読み込みに失敗した場合に返される。
	ErrLoadConfig = errors.New("設定の読み込みに失敗")
)
