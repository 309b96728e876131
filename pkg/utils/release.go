//go:build !debug
// +build !debug

package utils

import "github.com/rs/zerolog/log"

func Debug(_ string, _ ...interface{}) {}
func Log(fmt string, args ...interface{}) {
	log.Info().Msgf(fmt, args...)
}
