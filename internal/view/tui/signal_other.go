//go:build !unix

package tui

// 没有 SIGINT 的平台上 tea.Quit 结束 Run，由调用方退出
func interruptSelf() {}
