package propkeys

const (
	EnvPrefix     = `env_`
	GeneralPrefix = `general_`
	EnvIsLoaded   = GeneralPrefix + `envIsLoaded`
	// environment taken from the running process; only then is WAYLAND_SOCKET unset after use
	EnvIsProcess = GeneralPrefix + `envIsProcess`
	ConfigFile   = GeneralPrefix + `configFile`

	// display server
	DisplayServerPrefix = `display_`
	DisplayServer       = DisplayServerPrefix + `server` // "wayland", "x11"
	PeerPID             = DisplayServerPrefix + `peerPID`
	PeerName            = DisplayServerPrefix + `peerName`

	WaylandPrefix       = `wayland_`
	WaylandEndpointKind = WaylandPrefix + `endpointKind` // "path"
	WaylandSocketPath   = WaylandPrefix + `socketPath`
	WaylandDisplayName  = WaylandPrefix + `displayName`

	X11Prefix          = `x11_`
	X11Display         = X11Prefix + `display`
	X11Vendor          = X11Prefix + `vendor`
	X11ProtocolVersion = X11Prefix + `protocolVersion`
	X11Screens         = X11Prefix + `screens`
	X11WindowManager   = X11Prefix + `windowManager`
)
