// Package logger はlog/slogをバックエンドとする構造化ロガーを提供する。
//
// 各コンポーネントはグローバル変数ではなく、起動時に生成したLoggerを
// 明示的に受け取って使用する。
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"
)

// Logger は構造化ログ出力のインターフェース。
type Logger interface {
	Debug(ctx context.Context, msg string, fields ...Field)
	Info(ctx context.Context, msg string, fields ...Field)
	Warn(ctx context.Context, msg string, fields ...Field)
	Error(ctx context.Context, msg string, fields ...Field)
	// With は指定フィールドを常に付与する子ロガーを返す。
	With(fields ...Field) Logger
}

// Field はログに付与するキーと値の組。
type Field struct {
	Key   string
	Value any
}

// String は文字列フィールドを生成する。
func String(key, val string) Field { return Field{Key: key, Value: val} }

// Int は整数フィールドを生成する。
func Int(key string, val int) Field { return Field{Key: key, Value: val} }

// Duration は経過時間フィールドを生成する。
func Duration(key string, val time.Duration) Field { return Field{Key: key, Value: val} }

// Error はエラーフィールドを生成する。キーは常に "error"。
func Error(err error) Field { return Field{Key: "error", Value: err} }

// slogLogger はslogによるLoggerの実装。
type slogLogger struct {
	logger *slog.Logger
}

// New はwへJSON形式で出力するLoggerを生成する。
// levelには debug, info, warn, error のいずれかを指定する。
func New(w io.Writer, level string) (Logger, error) {
	lv, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}
	h := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lv})
	return &slogLogger{logger: slog.New(h)}, nil
}

// Nop は何も出力しないLoggerを返す。テスト用。
func Nop() Logger {
	return &slogLogger{logger: slog.New(slog.NewJSONHandler(io.Discard, nil))}
}

// ParseLevel はログレベル文字列をslog.Levelに変換する。
// 大文字小文字は区別しない。空文字列はinfoとして扱う。
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("不明なログレベル: %q", level)
	}
}

func (l *slogLogger) Debug(ctx context.Context, msg string, fields ...Field) {
	l.logger.LogAttrs(ctx, slog.LevelDebug, msg, toAttrs(fields)...)
}

func (l *slogLogger) Info(ctx context.Context, msg string, fields ...Field) {
	l.logger.LogAttrs(ctx, slog.LevelInfo, msg, toAttrs(fields)...)
}

func (l *slogLogger) Warn(ctx context.Context, msg string, fields ...Field) {
	l.logger.LogAttrs(ctx, slog.LevelWarn, msg, toAttrs(fields)...)
}

func (l *slogLogger) Error(ctx context.Context, msg string, fields ...Field) {
	l.logger.LogAttrs(ctx, slog.LevelError, msg, toAttrs(fields)...)
}

func (l *slogLogger) With(fields ...Field) Logger {
	args := make([]any, 0, len(fields))
	for _, a := range toAttrs(fields) {
		args = append(args, a)
	}
	return &slogLogger{logger: l.logger.With(args...)}
}

// toAttrs はFieldをslog.Attrに変換する。
// error値はJSONハンドラで空オブジェクトにならないよう文字列化する。
func toAttrs(fields []Field) []slog.Attr {
	attrs := make([]slog.Attr, len(fields))
	for i, f := range fields {
		if err, ok := f.Value.(error); ok && err != nil {
			attrs[i] = slog.String(f.Key, err.Error())
			continue
		}
		attrs[i] = slog.Any(f.Key, f.Value)
	}
	return attrs
}
