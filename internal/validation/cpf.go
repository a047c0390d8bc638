// Package validation holds the account field checks run before anything is
// persisted: CPF check digits and password strength.
package validation

import "strings"

// NormalizeCPF keeps only the ASCII digits of s
func NormalizeCPF(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

// ValidCPF reports whether s is a structurally valid CPF. Punctuation is
// ignored; the remaining 11 digits must not all be equal and must carry
// matching check digits.
func ValidCPF(s string) bool {
	cpf := NormalizeCPF(s)
	if len(cpf) != 11 {
		return false
	}
	if strings.Count(cpf, cpf[:1]) == 11 {
		return false
	}
	digits := make([]int, 11)
	for i := range cpf {
		digits[i] = int(cpf[i] - '0')
	}
	return checkDigit(digits[:9], 10) == digits[9] && checkDigit(digits[:10], 11) == digits[10]
}

// checkDigit weights digits from weight down to 2 and reduces the sum mod 11
func checkDigit(digits []int, weight int) int {
	sum := 0
	for i, d := range digits {
		sum += d * (weight - i)
	}
	if r := sum % 11; r >= 2 {
		return 11 - r
	}
	return 0
}
