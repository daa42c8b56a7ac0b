package gateway

import (
	"strconv"
	"strings"
	"time"
)

// ReceiptMaxLength - ограничение шлюза на длину receipt
const ReceiptMaxLength = 40

// BuildReceipt строит receipt из аккаунта и времени. Метка времени идет первой,
// чтобы пережить обрезку до ReceiptMaxLength.
func BuildReceipt(accountID string, at time.Time) string {
	receipt := "rcpt_" + strconv.FormatInt(at.UnixMilli(), 10) + "_" + strings.ReplaceAll(accountID, "-", "")
	if len(receipt) > ReceiptMaxLength {
		receipt = receipt[:ReceiptMaxLength]
	}
	return receipt
}
