//go:build !windows

package main

import "errors"

func registerHotkey(spec string, onFire func()) (func(), error) {
	return func() {}, errors.New("global hotkeys are only supported on Windows")
}
