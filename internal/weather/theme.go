package weather

// IsDark decides the theme from sunrise/sunset of the displayed location.
// All values are UTC epoch seconds, so no offset is applied. When either
// bound is unknown no decision is made and decided is false.
func IsDark(now int64, sunrise, sunset *int64) (dark, decided bool) {
	if sunrise == nil || sunset == nil {
		return false, false
	}
	return now < *sunrise || now > *sunset, true
}
