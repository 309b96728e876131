//go:build debug
// +build debug

package utils

import "github.com/rs/zerolog/log"

func Debug(fmt string, args ...interface{}) {
	log.Debug().Msgf(fmt, args...)
}

func Log(fmt string, args ...interface{}) {
	log.Info().Msgf(fmt, args...)
}
