package payment

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
)

const (
	phonePePayPath    = "/pg/v1/pay"
	phonePeStatusPath = "/pg/v1/status"
)

// PayChecksum signs a base64 pay payload for the X-VERIFY header.
func PayChecksum(payload, saltKey string, keyIndex int) string {
	return sign(payload+phonePePayPath+saltKey, keyIndex)
}

// StatusChecksum signs a status lookup for the X-VERIFY header.
func StatusChecksum(merchantID, transactionID, saltKey string, keyIndex int) string {
	return sign(statusPath(merchantID, transactionID)+saltKey, keyIndex)
}

func statusPath(merchantID, transactionID string) string {
	return phonePeStatusPath + "/" + merchantID + "/" + transactionID
}

func sign(s string, keyIndex int) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:]) + "###" + strconv.Itoa(keyIndex)
}
