// SPDX-License-Identifier: EPL-2.0

package mfcc

import "fmt"

// Config controls MFCC extraction. Zero fields take the defaults below,
// which follow the usual speech/music analysis convention:
//
//	SampleRate: 22050
//	NFFT:       2048
//	HopLength:   512
//	NMels:       128
//	NMFCC:        13
//	FMin:          0
//	FMax:   SampleRate/2
//	TopDB:        80
type Config struct {
	SampleRate int
	NFFT       int
	HopLength  int
	NMels      int
	NMFCC      int
	FMin       float64
	FMax       float64
	TopDB      float64 // negative disables the dynamic range clamp
}

func DefaultConfig() Config {
	return Config{
		SampleRate: 22050,
		NFFT:       2048,
		HopLength:  512,
		NMels:      128,
		NMFCC:      13,
		TopDB:      80,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()

	if c.SampleRate == 0 {
		c.SampleRate = d.SampleRate
	}
	if c.NFFT == 0 {
		c.NFFT = d.NFFT
	}
	if c.HopLength == 0 {
		c.HopLength = d.HopLength
	}
	if c.NMels == 0 {
		c.NMels = d.NMels
	}
	if c.NMFCC == 0 {
		c.NMFCC = d.NMFCC
	}
	if c.FMax == 0 {
		c.FMax = float64(c.SampleRate) / 2
	}
	if c.TopDB == 0 {
		c.TopDB = d.TopDB
	}

	return c
}

func (c Config) validate() error {
	switch {
	case c.SampleRate <= 0:
		return fmt.Errorf("%w: sample rate %d", ErrInvalidConfig, c.SampleRate)
	case c.NFFT < 2:
		return fmt.Errorf("%w: n_fft %d", ErrInvalidConfig, c.NFFT)
	case c.HopLength <= 0:
		return fmt.Errorf("%w: hop length %d", ErrInvalidConfig, c.HopLength)
	case c.NMels <= 0:
		return fmt.Errorf("%w: n_mels %d", ErrInvalidConfig, c.NMels)
	case c.NMFCC <= 0 || c.NMFCC > c.NMels:
		return fmt.Errorf("%w: n_mfcc %d with %d mel bands", ErrInvalidConfig, c.NMFCC, c.NMels)
	case c.FMin < 0 || c.FMax <= c.FMin || c.FMax > float64(c.SampleRate)/2:
		return fmt.Errorf("%w: frequency range [%g, %g]", ErrInvalidConfig, c.FMin, c.FMax)
	}

	return nil
}
