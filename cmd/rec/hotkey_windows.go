//go:build windows

package main

import (
	"errors"
	"fmt"
	"strings"
	"unsafe"

	"golang.org/x/sys/windows"
)

const (
	modAlt     = 0x0001
	modControl = 0x0002
	modShift   = 0x0004
	modWin     = 0x0008
	wmHotkey   = 0x0312
)

type msg struct {
	hwnd    uintptr
	message uint32
	wparam  uintptr
	lparam  uintptr
	time    uint32
	pt      point
}

type point struct{ x, y int32 }

// registerHotkey registers a global hotkey chord and calls onFire once
// when it is pressed. The returned function unregisters it.
func registerHotkey(spec string, onFire func()) (func(), error) {
	dll := windows.NewLazySystemDLL("user32.dll")
	procRegister := dll.NewProc("RegisterHotKey")
	procUnregister := dll.NewProc("UnregisterHotKey")
	procGetMsg := dll.NewProc("GetMessageW")

	mods, vk, err := parseHotkey(spec)
	if err != nil {
		return func() {}, err
	}
	r1, _, e1 := procRegister.Call(0, uintptr(1), uintptr(mods), uintptr(vk))
	if r1 == 0 {
		if e1 != nil {
			return func() {}, e1
		}
		return func() {}, errors.New("RegisterHotKey failed")
	}

	stop := make(chan struct{})
	go func() {
		var m msg
		for {
			r, _, _ := procGetMsg.Call(uintptr(unsafe.Pointer(&m)), 0, 0, 0)
			if int32(r) <= 0 {
				return
			}
			if m.message == wmHotkey {
				onFire()
				return
			}
			select {
			case <-stop:
				return
			default:
			}
		}
	}()

	unregister := func() {
		close(stop)
		_, _, _ = procUnregister.Call(0, uintptr(1))
	}
	return unregister, nil
}

func parseHotkey(spec string) (mods uint32, vk uint32, err error) {
	parts := strings.Split(strings.ToLower(strings.TrimSpace(spec)), "+")
	if len(parts) == 0 {
		return 0, 0, errors.New("empty hotkey")
	}
	key := parts[len(parts)-1]
	for _, p := range parts[:len(parts)-1] {
		switch p {
		case "ctrl", "control":
			mods |= modControl
		case "alt":
			mods |= modAlt
		case "shift":
			mods |= modShift
		case "win", "meta":
			mods |= modWin
		}
	}
	// Digits and letters map straight to their ASCII virtual keys.
	if len(key) == 1 && key[0] >= '0' && key[0] <= '9' {
		return mods, uint32(key[0]), nil
	}
	if len(key) == 1 && key[0] >= 'a' && key[0] <= 'z' {
		return mods, uint32(strings.ToUpper(key)[0]), nil
	}
	if strings.HasPrefix(key, "f") {
		if n, perr := parseFKey(key); perr == nil {
			return mods, n, nil
		}
	}
	return 0, 0, fmt.Errorf("unsupported key: %s", key)
}

func parseFKey(k string) (uint32, error) {
	var n int
	if _, err := fmt.Sscanf(strings.ToLower(k), "f%d", &n); err != nil || n < 1 || n > 12 {
		return 0, fmt.Errorf("unsupported f-key: %s", k)
	}
	// VK_F1 is 0x70.
	return uint32(0x70 + n - 1), nil
}
