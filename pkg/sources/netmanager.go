package sources

import (
	"fmt"

	"github.com/godbus/dbus/v5"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// DeviceKind is the category of a network device.
type DeviceKind int

const (
	KindOther DeviceKind = iota
	WiFi
	Ethernet
	VPN
)

func (k DeviceKind) String() string {
	switch k {
	case WiFi:
		return "wifi"
	case Ethernet:
		return "ethernet"
	case VPN:
		return "vpn"
	default:
		return "other"
	}
}

// Device is a network device and its active connection, if any.
type Device struct {
	Kind      DeviceKind `json:"kind"`
	Interface string     `json:"interface,omitempty"`
	Activated bool       `json:"activated"`
	// Connection is the id of the active connection, e.g. the WiFi SSID
	// profile name.
	Connection string `json:"connection,omitempty"`
}

// DeviceLister enumerates network devices.
type DeviceLister interface {
	Devices() ([]Device, error)
}

const (
	nmBus        = "org.freedesktop.NetworkManager"
	nmPath       = dbus.ObjectPath("/org/freedesktop/NetworkManager")
	nmDevice     = nmBus + ".Device"
	nmActiveConn = nmBus + ".Connection.Active"

	nmDeviceTypeEthernet  = 1
	nmDeviceTypeWiFi      = 2
	nmDeviceTypeTun       = 16
	nmDeviceTypeWireGuard = 29

	nmDeviceStateActivated     = 100
	nmActiveConnStateActivated = 2
)

// deviceKind maps an NM_DEVICE_TYPE to a kind.
func deviceKind(t uint32) DeviceKind {
	switch t {
	case nmDeviceTypeEthernet:
		return Ethernet
	case nmDeviceTypeWiFi:
		return WiFi
	case nmDeviceTypeTun, nmDeviceTypeWireGuard:
		return VPN
	default:
		return KindOther
	}
}

type propertyGetter interface {
	GetProperty(p string) (dbus.Variant, error)
}

// NetworkManager lists devices known to NetworkManager over the system bus.
type NetworkManager struct {
	conn   *dbus.Conn
	object func(path dbus.ObjectPath) propertyGetter
}

// NewNetworkManager connects to the system bus.
func NewNetworkManager() (*NetworkManager, error) {
	conn, err := dbus.ConnectSystemBus()
	if err != nil {
		return nil, errors.Wrapf(ErrDevice, "connect system bus: %v", err)
	}
	return &NetworkManager{
		conn: conn,
		object: func(path dbus.ObjectPath) propertyGetter {
			return conn.Object(nmBus, path)
		},
	}, nil
}

// Close closes the bus connection.
func (n *NetworkManager) Close() error {
	if n.conn == nil {
		return nil
	}
	return n.conn.Close()
}

// Devices returns WiFi, Ethernet and VPN devices, plus VPN connections
// that have no device of their own.
func (n *NetworkManager) Devices() ([]Device, error) {
	paths, err := property[[]dbus.ObjectPath](n.object(nmPath), nmBus+".Devices")
	if err != nil {
		return nil, err
	}

	var devs []Device
	seen := map[dbus.ObjectPath]bool{}
	for _, p := range paths {
		obj := n.object(p)
		t, err := property[uint32](obj, nmDevice+".DeviceType")
		if err != nil {
			return nil, err
		}
		kind := deviceKind(t)
		if kind == KindOther {
			continue
		}

		d := Device{Kind: kind}
		if d.Interface, err = property[string](obj, nmDevice+".Interface"); err != nil {
			return nil, err
		}
		state, err := property[uint32](obj, nmDevice+".State")
		if err != nil {
			return nil, err
		}
		d.Activated = state == nmDeviceStateActivated

		ac, err := property[dbus.ObjectPath](obj, nmDevice+".ActiveConnection")
		if err != nil {
			return nil, err
		}
		if ac.IsValid() && ac != "/" {
			seen[ac] = true
			if d.Connection, err = property[string](n.object(ac), nmActiveConn+".Id"); err != nil {
				return nil, err
			}
		}
		devs = append(devs, d)
	}

	vpns, err := n.vpnConnections(seen)
	if err != nil {
		return nil, err
	}
	devs = append(devs, vpns...)

	logrus.WithField("devices", len(devs)).Trace("listed network devices")
	return devs, nil
}

// vpnConnections returns plugin VPN connections, which are active
// connections flagged Vpn without a device of their own.
func (n *NetworkManager) vpnConnections(seen map[dbus.ObjectPath]bool) ([]Device, error) {
	active, err := property[[]dbus.ObjectPath](n.object(nmPath), nmBus+".ActiveConnections")
	if err != nil {
		return nil, err
	}

	var devs []Device
	for _, p := range active {
		if seen[p] {
			continue
		}
		obj := n.object(p)
		vpn, err := property[bool](obj, nmActiveConn+".Vpn")
		if err != nil {
			return nil, err
		}
		if !vpn {
			continue
		}
		id, err := property[string](obj, nmActiveConn+".Id")
		if err != nil {
			return nil, err
		}
		state, err := property[uint32](obj, nmActiveConn+".State")
		if err != nil {
			return nil, err
		}
		devs = append(devs, Device{
			Kind:       VPN,
			Activated:  state == nmActiveConnStateActivated,
			Connection: id,
		})
	}
	return devs, nil
}

func property[T any](obj propertyGetter, name string) (T, error) {
	var zero T
	v, err := obj.GetProperty(name)
	if err != nil {
		return zero, errors.Wrapf(ErrDevice, "get %s: %v", name, err)
	}
	t, ok := v.Value().(T)
	if !ok {
		return zero, errors.Wrapf(ErrParse, "%s has type %s, want %T", name, v.Signature(), zero)
	}
	return t, nil
}

// ActiveConnection picks the connection to show for the status line: the
// first activated WiFi or Ethernet device, and the first activated VPN.
func ActiveConnection(devs []Device) (primary, vpn Device, ok bool) {
	for _, d := range devs {
		if !d.Activated {
			continue
		}
		switch d.Kind {
		case WiFi, Ethernet:
			if !ok {
				primary, ok = d, true
			}
		case VPN:
			if vpn.Connection == "" && vpn.Interface == "" {
				vpn = d
			}
		}
	}
	return primary, vpn, ok
}

// String is used in logs.
func (d Device) String() string {
	return fmt.Sprintf("%s %s (%s)", d.Kind, d.Interface, d.Connection)
}
