package relay

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

// 入力検証のエラー種別。
var (
	// ErrInvalidBody はリクエストボディがJSONオブジェクトでない場合に返される。
	ErrInvalidBody = errors.New("invalid request body")
	// ErrMissingCreatorAddress はcreatorAddressが欠けている場合に返される。
	ErrMissingCreatorAddress = errors.New("missing required parameter: creatorAddress")
)

// 転送時のデフォルト値。JSONエンコード済みの値で保持する。
var (
	defaultSymbol    = json.RawMessage(`"FCNFT"`)
	defaultPrice     = json.RawMessage(`"0.00005 ether"`)
	defaultMaxSupply = json.RawMessage(`0`)
)

// jsonNull はJSONのnullリテラル。
var jsonNull = []byte("null")

// CollectionRequest はPOST /create-collection のリクエストボディ。
//
// 各フィールドはJSONの生の値を保持する。nilはキーが存在しないことを、
// "null" はキーが明示的にnullであることを表し、両者を区別する。
type CollectionRequest struct {
	// Hash はコレクションの識別子。転送はしない。
	Hash json.RawMessage
	// FID はFarcasterの数値ID。転送はしない。
	FID json.RawMessage
	// CreatorAddress はミントされたコレクションの受取人アドレス。必須。
	CreatorAddress json.RawMessage
	// CollectionName はコレクションの表示名。
	CollectionName json.RawMessage
	// BaseURI はメタデータのベースURI。
	BaseURI json.RawMessage
	// Price は価格表現（例: "0.00005 ether"）。
	Price json.RawMessage
	// MaxMints は供給上限。0は無制限。
	MaxMints json.RawMessage
	// Symbol はトークンシンボル。
	Symbol json.RawMessage
}

// DeployPayload はデプロイサービスの POST /deploy に送るボディ。
// フィールドの順序はデプロイサービスが受け取るJSONの順序と一致させている。
type DeployPayload struct {
	// BaseURI は入力に無ければJSONから省略される。
	BaseURI json.RawMessage `json:"base_uri,omitempty"`
	// Name は入力に無ければJSONから省略される。
	Name         json.RawMessage `json:"name,omitempty"`
	Symbol       json.RawMessage `json:"symbol"`
	Price        json.RawMessage `json:"price"`
	Recipient    json.RawMessage `json:"recipient"`
	MaxSupply    json.RawMessage `json:"max_supply"`
	ManualVerify bool            `json:"manual_verify"`
}

// DecodeCollectionRequest はリクエストボディをCollectionRequestに変換する。
// キー名は大文字小文字を区別して照合する。
//
// オブジェクト以外の正しいJSON（配列、文字列、数値、真偽値）はフィールドを
// 持たないリクエストとして扱う。不正なJSONとnullはErrInvalidBodyとなる。
func DecodeCollectionRequest(body []byte) (CollectionRequest, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return CollectionRequest{}, nil
		}
		return CollectionRequest{}, fmt.Errorf("%w: %w", ErrInvalidBody, err)
	}
	if fields == nil {
		return CollectionRequest{}, fmt.Errorf("%w: body must be a JSON object", ErrInvalidBody)
	}

	return CollectionRequest{
		Hash:           fields["hash"],
		FID:            fields["fid"],
		CreatorAddress: fields["creatorAddress"],
		CollectionName: fields["collectionName"],
		BaseURI:        fields["baseURI"],
		Price:          fields["price"],
		MaxMints:       fields["maxMints"],
		Symbol:         fields["symbol"],
	}, nil
}

// Normalize はリクエストをデプロイサービス向けのペイロードに変換する。
//
// デフォルト値の適用規則:
//   - symbol: 未指定またはnullなら "FCNFT"
//   - price: 未指定なら "0.00005 ether"。nullはそのまま転送する
//   - maxMints: 未指定またはnullなら 0
//
// creatorAddressの値は変更せず、キー名だけをrecipientに変える。
// hashとfidは転送しない。
func Normalize(req CollectionRequest) (DeployPayload, error) {
	if isFalsy(req.CreatorAddress) {
		return DeployPayload{}, ErrMissingCreatorAddress
	}

	payload := DeployPayload{
		BaseURI:      req.BaseURI,
		Name:         req.CollectionName,
		Symbol:       req.Symbol,
		Price:        req.Price,
		Recipient:    req.CreatorAddress,
		MaxSupply:    req.MaxMints,
		ManualVerify: false,
	}
	if isAbsentOrNull(payload.Symbol) {
		payload.Symbol = defaultSymbol
	}
	// priceだけはnullを未指定として扱わない
	if payload.Price == nil {
		payload.Price = defaultPrice
	}
	if isAbsentOrNull(payload.MaxSupply) {
		payload.MaxSupply = defaultMaxSupply
	}
	return payload, nil
}

// isAbsentOrNull はキーが存在しないか値がnullかを判定する。
func isAbsentOrNull(raw json.RawMessage) bool {
	return raw == nil || bytes.Equal(bytes.TrimSpace(raw), jsonNull)
}

// isFalsy は必須パラメータとして「値が無い」とみなすかを判定する。
// 未指定、null、空文字列、false、数値の0を値が無いものとして扱う。
func isFalsy(raw json.RawMessage) bool {
	if isAbsentOrNull(raw) {
		return true
	}
	v := bytes.TrimSpace(raw)
	switch v[0] {
	case '"':
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			return false
		}
		return s == ""
	case 'f':
		return string(v) == "false"
	case 't', '{', '[':
		return false
	default:
		f, err := strconv.ParseFloat(string(v), 64)
		return err == nil && f == 0
	}
}
