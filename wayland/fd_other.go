//go:build !unix

package wayland

import (
	"github.com/srlehn/wlconn/internal/consts"
	"github.com/srlehn/wlconn/internal/errors"
)

func checkSocketFD(fd int) error { return errors.New(consts.ErrPlatformNotSupported) }

func closeFD(fd int) error { return errors.New(consts.ErrPlatformNotSupported) }
