// Package keyboard synthesizes key presses for recognized controller input.
// Backends either log the press (dry run) or run an external command such
// as xdotool that injects the key-down/key-up pair at the OS input layer.
package keyboard
