// Package vmc recognizes Virtual Motion Capture controller reports
// ("/VMC/Ext/Con") in OSC datagrams and maps button presses to key actions.
package vmc
