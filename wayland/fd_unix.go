//go:build unix

package wayland

import (
	"golang.org/x/sys/unix"

	"github.com/srlehn/wlconn/internal/errors"
)

// checkSocketFD reports whether fd is an open socket.
func checkSocketFD(fd int) error {
	if fd < 0 {
		return errors.Errorf(`negative fd %d`, fd)
	}
	var st unix.Stat_t
	if err := unix.Fstat(fd, &st); err != nil {
		return errors.New(err)
	}
	if st.Mode&unix.S_IFMT != unix.S_IFSOCK {
		return errors.Errorf(`fd %d is not a socket`, fd)
	}
	return nil
}

func closeFD(fd int) error {
	if err := unix.Close(fd); err != nil {
		return errors.New(err)
	}
	return nil
}
