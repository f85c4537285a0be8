//go:build linux

package pack

import "syscall"

// inodeFromStat returns the inode number from a syscall.Stat_t.
func inodeFromStat(stat *syscall.Stat_t) uint64 {
	return stat.Ino
}

// ctimeNsecFromStat returns the change time as nanoseconds since the epoch.
func ctimeNsecFromStat(stat *syscall.Stat_t) int64 {
	return stat.Ctim.Sec*1e9 + stat.Ctim.Nsec
}
