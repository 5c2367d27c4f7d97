// Package contracts declares the three ledger templates the dashboard
// renders and the typed payloads they carry. Template names are only
// meaningful once qualified with the package id discovered at login.
package contracts

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// ModuleName is the ledger module declaring all dashboard templates.
const ModuleName = "Main"

// Entity names within ModuleName.
const (
	SimpleTokenEntity    = "SimpleToken"
	EscrowEntity         = "Escrow"
	CollateralLockEntity = "CollateralLock"
)

// Choice names exercised by the dashboard.
const (
	EscrowReleaseChoice        = "Release"
	CollateralLockUnlockChoice = "Unlock"
)

// TemplateID fully qualifies an entity against an uploaded package.
func TemplateID(packageID, entity string) string {
	return packageID + ":" + ModuleName + ":" + entity
}

// SimpleToken is a bearer-style holding issued by one party to another.
type SimpleToken struct {
	Issuer string `json:"issuer"`
	Owner  string `json:"owner"`
	Amount string `json:"amount"`
}

// Escrow holds funds between a buyer and seller until the agent releases
// or cancels it.
type Escrow struct {
	Buyer       string `json:"buyer"`
	Seller      string `json:"seller"`
	EscrowAgent string `json:"escrowAgent"`
	Amount      string `json:"amount"`
	Description string `json:"description"`
}

// CollateralLock pledges an amount to a custodian until a maturity date.
type CollateralLock struct {
	Owner       string `json:"owner"`
	Custodian   string `json:"custodian"`
	Amount      string `json:"amount"`
	LockedUntil string `json:"lockedUntil"`
}

// amountPattern matches the gateway's decimal encoding. Amounts travel as
// strings end to end; floats would corrupt them.
var amountPattern = regexp.MustCompile(`^-?[0-9]+(\.[0-9]+)?$`)

// ValidAmount reports whether value is a well-formed decimal string.
func ValidAmount(value string) bool {
	return amountPattern.MatchString(strings.TrimSpace(value))
}

// DecodeSimpleToken decodes a SimpleToken payload.
func DecodeSimpleToken(raw json.RawMessage) (SimpleToken, error) {
	var token SimpleToken
	if err := json.Unmarshal(raw, &token); err != nil {
		return SimpleToken{}, fmt.Errorf("decode simple token payload: %w", err)
	}
	return token, nil
}

// DecodeEscrow decodes an Escrow payload.
func DecodeEscrow(raw json.RawMessage) (Escrow, error) {
	var escrow Escrow
	if err := json.Unmarshal(raw, &escrow); err != nil {
		return Escrow{}, fmt.Errorf("decode escrow payload: %w", err)
	}
	return escrow, nil
}

// DecodeCollateralLock decodes a CollateralLock payload.
func DecodeCollateralLock(raw json.RawMessage) (CollateralLock, error) {
	var lock CollateralLock
	if err := json.Unmarshal(raw, &lock); err != nil {
		return CollateralLock{}, fmt.Errorf("decode collateral lock payload: %w", err)
	}
	return lock, nil
}
