//go:build unix

package tui

import "golang.org/x/sys/unix"

func interruptSelf() {
	_ = unix.Kill(unix.Getpid(), unix.SIGINT)
}
