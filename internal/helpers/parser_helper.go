package helpers

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const referencePrefix = "APP"

func StringToInt(s string) (int, error) {
	return strconv.Atoi(s)
}

func StringToUint(s string) (uint, error) {
	n, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, err
	}
	return uint(n), nil
}

// BuildPaymentReference embeds the application id and issue time, e.g. APP-42-1718000000.
func BuildPaymentReference(applicationID uint, at time.Time) string {
	return fmt.Sprintf("%s-%d-%d", referencePrefix, applicationID, at.Unix())
}

func ExtractApplicationID(reference string) (uint, error) {
	parts := strings.Split(reference, "-")
	if len(parts) < 3 || parts[0] != referencePrefix {
		return 0, fmt.Errorf("invalid payment reference format")
	}
	id, err := StringToUint(parts[1])
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid application ID in reference")
	}
	return id, nil
}
