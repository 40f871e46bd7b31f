package wayland

import (
	psnet "github.com/shirou/gopsutil/v3/net"

	"github.com/srlehn/wlconn/internal/errors"
)

// listenerPID finds the process holding the unix socket bound to path.
func listenerPID(path string) (int32, error) {
	conns, err := psnet.Connections(`unix`)
	if err != nil {
		return 0, errors.New(err)
	}
	for _, st := range conns {
		if st.Laddr.IP == path && st.Pid > 0 {
			return st.Pid, nil
		}
	}
	return 0, errors.Errorf(`no process found for socket %s`, path)
}
