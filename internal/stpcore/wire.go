package stpcore

import (
	"encoding/binary"
	"fmt"
	"net"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
)

// stpMulticastMAC is the IEEE 802.1D bridge-group multicast address BPDUs
// are addressed to, matching the teacher's STPMulticastMAC constant.
const stpMulticastMAC = "01:80:c2:00:00:00"

// EncodeConfigBPDU renders a Configuration BPDU as an Ethernet II + LLC +
// 802.1D frame, byte-for-byte in the same field layout the teacher's
// protocols.STPHandler.SendConfigBPDU builds (destination/source MAC,
// LLC 802.2 SAP bytes, protocol id/version/type, then the 31-byte
// Configuration BPDU body with timers scaled to 1/256ths of a second).
// This is purely an optional wire-format utility exercising gopacket; the
// core simulation never encodes BPDUs to bytes (spec.md non-goals).
func EncodeConfigBPDU(b ConfigBPDU, srcMAC net.HardwareAddr) ([]byte, error) {
	dst, err := net.ParseMAC(stpMulticastMAC)
	if err != nil {
		return nil, fmt.Errorf("stpcore: parse multicast MAC: %w", err)
	}
	if len(srcMAC) != 6 {
		return nil, fmt.Errorf("stpcore: source MAC must be 6 bytes, got %d", len(srcMAC))
	}

	buf := make([]byte, 0, 64)
	buf = append(buf, dst...)
	buf = append(buf, srcMAC...)
	buf = append(buf, 0x00, 0x26) // length: LLC + BPDU = 38 bytes

	buf = append(buf, 0x42, 0x42, 0x03) // LLC DSAP, SSAP, control

	buf = append(buf, 0x00, 0x00) // protocol id
	buf = append(buf, 0x00)       // version
	buf = append(buf, 0x00)       // BPDU type: configuration

	flags := uint8(0)
	if b.TC {
		flags |= 0x01
	}
	if b.TCAck {
		flags |= 0x80
	}
	buf = append(buf, flags)

	buf = appendBridgeID(buf, b.RootID)
	buf = binary.BigEndian.AppendUint32(buf, b.Cost)
	buf = appendBridgeID(buf, b.SenderID)
	buf = binary.BigEndian.AppendUint16(buf, uint16(b.PortIndex))
	buf = binary.BigEndian.AppendUint16(buf, uint16(b.MessageAge)*256)
	buf = binary.BigEndian.AppendUint16(buf, uint16(b.MaxAge)*256)
	buf = binary.BigEndian.AppendUint16(buf, uint16(b.HelloTime)*256)
	buf = binary.BigEndian.AppendUint16(buf, uint16(b.ForwardDelay)*256)

	for len(buf) < 64 {
		buf = append(buf, 0x00)
	}
	return buf, nil
}

func appendBridgeID(buf []byte, id BridgeID) []byte {
	buf = binary.BigEndian.AppendUint16(buf, id.Priority)
	mac, err := net.ParseMAC(id.MAC)
	if err != nil || len(mac) != 6 {
		mac = make(net.HardwareAddr, 6)
	}
	return append(buf, mac...)
}

// DecodeConfigBPDU is the inverse of EncodeConfigBPDU: it parses the
// Ethernet+LLC+BPDU frame gopacket decodes and reconstructs the
// Configuration BPDU value, demonstrating the round-trip property
// (spec.md §8 property 6).
func DecodeConfigBPDU(data []byte) (ConfigBPDU, error) {
	packet := gopacket.NewPacket(data, layers.LayerTypeEthernet, gopacket.Default)
	if packet.ErrorLayer() != nil {
		return ConfigBPDU{}, fmt.Errorf("stpcore: decode ethernet frame: %v", packet.ErrorLayer().Error())
	}
	if len(data) < 14+3+4+31 {
		return ConfigBPDU{}, fmt.Errorf("stpcore: frame too short for a Configuration BPDU")
	}

	const headerLen = 14 + 3 + 4 // Ethernet header + LLC header + protocol id/version/type
	flags := data[headerLen]
	off := headerLen + 1 // skip past the flags byte

	rootID := readBridgeID(data[off : off+8])
	cost := binary.BigEndian.Uint32(data[off+8 : off+12])
	senderID := readBridgeID(data[off+12 : off+20])
	portIdx := binary.BigEndian.Uint16(data[off+20 : off+22])
	msgAge := binary.BigEndian.Uint16(data[off+22 : off+24])
	maxAge := binary.BigEndian.Uint16(data[off+24 : off+26])
	helloTime := binary.BigEndian.Uint16(data[off+26 : off+28])
	forwardDelay := binary.BigEndian.Uint16(data[off+28 : off+30])

	return ConfigBPDU{
		RootID:       rootID,
		Cost:         cost,
		SenderID:     senderID,
		PortIndex:    int(portIdx),
		MessageAge:   int(msgAge / 256),
		MaxAge:       int(maxAge / 256),
		HelloTime:    int(helloTime / 256),
		ForwardDelay: int(forwardDelay / 256),
		TC:           flags&0x01 != 0,
		TCAck:        flags&0x80 != 0,
	}, nil
}

func readBridgeID(b []byte) BridgeID {
	priority := binary.BigEndian.Uint16(b[0:2])
	mac := net.HardwareAddr(b[2:8]).String()
	return BridgeID{Priority: priority, MAC: mac}
}
