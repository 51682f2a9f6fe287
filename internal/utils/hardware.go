package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"net"
	"strings"
	"sync"
)

const unknownDevice = "UNKNOWN-DEVICE"

var (
	deviceOnce sync.Once
	deviceID   string
)

// GetDeviceID identifies this terminal by a hash of its first active MAC
// address, e.g. "POS-A1B2C3D4". It is computed once per process and tags
// backups so a restore can tell which machine wrote them.
func GetDeviceID() string {
	deviceOnce.Do(func() {
		interfaces, err := net.Interfaces()
		if err != nil {
			deviceID = unknownDevice
			return
		}
		deviceID = deviceIDFrom(interfaces)
	})
	return deviceID
}

func deviceIDFrom(interfaces []net.Interface) string {
	var mac string
	for _, i := range interfaces {
		if i.Flags&net.FlagUp != 0 && i.Flags&net.FlagLoopback == 0 && len(i.HardwareAddr) > 0 {
			mac = i.HardwareAddr.String()
			break
		}
	}
	if mac == "" {
		return unknownDevice
	}
	hash := sha256.Sum256([]byte(mac + "POS-TERMINAL"))
	return "POS-" + strings.ToUpper(hex.EncodeToString(hash[:])[:8])
}
