package board

// Settings holds the handling parameters of a board. It is a plain value;
// change it by assigning a new one, never by mutating a shared copy.
type Settings struct {
	SoftDropPower float64 // gravity multiplier while soft drop is held
	GravityPower  float64 // rows per tick
	LockDelay     float64 // seconds a grounded piece may rest before locking
	InitialDelay  uint32  // ms before a held shift starts repeating
	RepeatDelay   uint32  // ms between repeated shifts
}

// DefaultSettings returns the stock handling.
func DefaultSettings() Settings {
	return Settings{
		SoftDropPower: 10,
		GravityPower:  0.02,
		LockDelay:     0.5,
		InitialDelay:  200,
		RepeatDelay:   50,
	}
}

// DropClock carries the fractional gravity and the lock-delay timer between
// ticks.
type DropClock struct {
	Fall float64
	Lock float64
}
