package audio

// Conversions from NES APU register values to the parameters expected by
// Manager setters.

// CPUClockNTSC is the 2A03 clock rate, in Hz.
const CPUClockNTSC = 1789773.0

// PulseFrequency returns the frequency of a pulse channel for an 11-bit timer
// period. Periods under 8 silence the channel, for which 0 is returned.
func PulseFrequency(timer uint16) float64 {
	timer &= 0x7FF
	if timer < 8 {
		return 0
	}
	return CPUClockNTSC / (16 * float64(timer+1))
}

// TriangleFrequency returns the frequency of the triangle channel for an
// 11-bit timer period. Its sequencer has 32 steps, an octave below pulses.
func TriangleFrequency(timer uint16) float64 {
	timer &= 0x7FF
	if timer < 2 {
		// Ultrasonic, silenced by most emulators.
		return 0
	}
	return CPUClockNTSC / (32 * float64(timer+1))
}

var noisePeriods = [16]uint16{
	4, 8, 16, 32, 64, 96, 128, 160, 202, 254, 380, 508, 762, 1016, 2034, 4068,
}

// NoiseFrequency returns the nominal frequency of the noise channel for a
// 4-bit period index. The shift register clock rate is mapped so that the
// highest harmonic of the noise waveform sits at half of it.
func NoiseFrequency(period uint8) float64 {
	rate := CPUClockNTSC / float64(noisePeriods[period&0x0F])
	return rate / (2 * (NoiseBins - 1))
}

var dutyRatios = [4]float64{0.125, 0.25, 0.5, 0.75}

// DutyRatio returns the duty ratio for a 2-bit pulse duty setting.
func DutyRatio(duty uint8) float64 {
	return dutyRatios[duty&0x03]
}

// Volume returns the linear volume for a 4-bit envelope volume.
func Volume(vol uint8) float64 {
	return float64(vol&0x0F) / 15
}
