package message

import "encoding/binary"

// Command is a fully-formed command payload: an opcode followed by
// opcode-specific bytes. Frame sequencing and CRC are applied later by
// ssp/frame; Command only owns the payload.
type Command struct {
	Op   Opcode
	Args []byte
}

// Opcode returns the command's opcode.
func (c Command) Opcode() Opcode { return c.Op }

// Encode returns the command's wire payload: opcode followed by Args.
func (c Command) Encode() []byte {
	out := make([]byte, 0, 1+len(c.Args))
	out = append(out, byte(c.Op))
	out = append(out, c.Args...)
	return out
}

func fixed(op Opcode) Command { return Command{Op: op} }

// Simple fixed-payload (opcode only) commands.
func Reset() Command             { return fixed(OpReset) }
func DisplayOn() Command         { return fixed(OpDisplayOn) }
func DisplayOff() Command        { return fixed(OpDisplayOff) }
func SetupRequest() Command      { return fixed(OpSetupRequest) }
func Poll() Command              { return fixed(OpPoll) }
func PollWithAck() Command       { return fixed(OpPollWithAck) }
func Reject() Command            { return fixed(OpReject) }
func Disable() Command           { return fixed(OpDisable) }
func Enable() Command            { return fixed(OpEnable) }
func SerialNumber() Command      { return fixed(OpSerialNumber) }
func UnitData() Command          { return fixed(OpUnitData) }
func ChannelValueData() Command  { return fixed(OpChannelValueData) }
func Sync() Command              { return fixed(OpSync) }
func LastRejectCode() Command    { return fixed(OpLastRejectCode) }
func Hold() Command              { return fixed(OpHold) }
func DatasetVersion() Command    { return fixed(OpDatasetVersion) }
func Empty() Command             { return fixed(OpEmpty) }
func SmartEmpty() Command        { return fixed(OpSmartEmpty) }
func EventAck() Command          { return fixed(OpEventAck) }
func DisablePayout() Command     { return fixed(OpDisablePayout) }
func EncryptionReset() Command   { return fixed(OpEncryptionReset) }

// HostProtocolVersion builds the "set host protocol version" command.
func HostProtocolVersion(version byte) Command {
	return Command{Op: OpHostProtocolVersion, Args: []byte{version}}
}

// EnablePayout builds the enable-payout command with a 1-byte option field
// (device-specific; 0 selects the default payout mode).
func EnablePayout(option byte) Command {
	return Command{Op: OpEnablePayout, Args: []byte{option}}
}

// SetInhibits builds a variable-length SetInhibits command: one bitmask
// byte per 8 channels, LSB = channel 1. The masks are copied as given; their
// number is not checked against the device's channel count.
func SetInhibits(masks []byte) Command {
	return Command{Op: OpSetInhibits, Args: append([]byte{}, masks...)}
}

// ProgramFirmware builds the firmware-programming prepare command, which
// carries a 2-byte firmware code.
func ProgramFirmware(code uint16) Command {
	args := make([]byte, 2)
	binary.LittleEndian.PutUint16(args, code)
	return Command{Op: OpProgramFirmware, Args: args}
}

// ConfigureBezel builds the bezel RGB + volatility command.
func ConfigureBezel(r, g, b byte, volatile bool) Command {
	v := byte(0)
	if volatile {
		v = 1
	}
	return Command{Op: OpConfigureBezel, Args: []byte{r, g, b, v}}
}

// SetGenerator builds the key-negotiation SetGenerator command, an 8-byte
// little-endian 64-bit prime.
func SetGenerator(g uint64) Command {
	args := make([]byte, 8)
	binary.LittleEndian.PutUint64(args, g)
	return Command{Op: OpSetGenerator, Args: args}
}

// SetModulus builds the key-negotiation SetModulus command.
func SetModulus(n uint64) Command {
	args := make([]byte, 8)
	binary.LittleEndian.PutUint64(args, n)
	return Command{Op: OpSetModulus, Args: args}
}

// RequestKeyExchange builds the key-negotiation RequestKeyExchange command,
// carrying the host's own intermediate key.
func RequestKeyExchange(hostInter uint64) Command {
	args := make([]byte, 8)
	binary.LittleEndian.PutUint64(args, hostInter)
	return Command{Op: OpRequestKeyExchange, Args: args}
}

// SetEncryptionKey builds the fixed-key-prefix override command.
func SetEncryptionKey(fixedKey uint64) Command {
	args := make([]byte, 8)
	binary.LittleEndian.PutUint64(args, fixedKey)
	return Command{Op: OpSetEncryptionKey, Args: args}
}

// PayoutDenomination is one entry of a PayoutByDenomination command: the
// quantity of a single denomination to pay out, the denomination's value,
// and its currency. On the wire each entry is a 9-byte block: Number as a
// 2-byte little-endian count, Value as a 4-byte little-endian amount, and
// Currency as a 3-byte ASCII country code.
type PayoutDenomination struct {
	Number   uint16
	Value    uint32
	Currency [3]byte
}

// PayoutByDenomination builds the variable-length payout command: a count
// byte, one 9-byte PayoutDenomination block per entry, then a trailing
// PayoutOption byte (0x19 to test the payout without executing it, 0x58 to
// execute it for real).
func PayoutByDenomination(denoms []PayoutDenomination, test bool) Command {
	args := make([]byte, 0, 1+9*len(denoms)+1)
	args = append(args, byte(len(denoms)))
	for _, d := range denoms {
		block := make([]byte, 9)
		binary.LittleEndian.PutUint16(block[0:2], d.Number)
		binary.LittleEndian.PutUint32(block[2:6], d.Value)
		copy(block[6:9], d.Currency[:])
		args = append(args, block...)
	}
	if test {
		args = append(args, 0x19)
	} else {
		args = append(args, 0x58)
	}
	return Command{Op: OpPayoutByDenomination, Args: args}
}

// Encrypted wraps already-encoded ciphertext (produced by ssp/encrypted) as
// the payload of an outer Encrypted command.
func Encrypted(data []byte) Command {
	return Command{Op: OpEncrypted, Args: data}
}

// DownloadDataPacket builds a firmware-download data-packet command. block
// is big-endian on the wire; the special block 0xFFFFFFFF carries the
// 128-byte firmware header instead of a code line.
func DownloadDataPacket(block uint32, line byte, data []byte) Command {
	args := make([]byte, 0, 5+len(data))
	blockBytes := make([]byte, 4)
	binary.BigEndian.PutUint32(blockBytes, block)
	args = append(args, blockBytes...)
	args = append(args, line)
	args = append(args, data...)
	return Command{Op: OpDownloadDataPacket, Args: args}
}

// FirmwareHeaderBlock is the sentinel block number that signals the
// firmware header (rather than a code line) is being transported.
const FirmwareHeaderBlock uint32 = 0xFFFFFFFF
