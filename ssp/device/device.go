// Package device implements the device façade (spec component C8): the one
// entry point applications use to talk to a banknote validator/recycler. It
// composes ssp/session for sequencing, ssp/message for command/response
// encoding, ssp/keyex for key negotiation, and ssp/encrypted for the
// transparent encrypted sub-frame once a session key is live — callers never
// see STEX framing themselves, matching how the original vendor SDK hides
// the encrypted transport behind the same command surface as the plaintext
// one.
package device

import (
	"errors"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/decapod-atm/ssp-host/ssp"
	"github.com/decapod-atm/ssp-host/ssp/channels"
	"github.com/decapod-atm/ssp-host/ssp/encrypted"
	"github.com/decapod-atm/ssp-host/ssp/keyex"
	"github.com/decapod-atm/ssp-host/ssp/message"
	"github.com/decapod-atm/ssp-host/ssp/poll"
	"github.com/decapod-atm/ssp-host/ssp/session"
	"github.com/decapod-atm/ssp-host/transport"
)

// Device drives one physical validator/recycler over a single transport.
// It is not safe for concurrent use from multiple goroutines, mirroring
// ssp/session's single-outstanding-request contract.
type Device struct {
	sess *session.Session
	cfg  ssp.Config

	keyex      *keyex.Exchange
	key        [16]byte
	keyed      bool
	sendCount  uint32
	recvCount  uint32

	log *log.Logger
}

// New builds a Device over t using cfg's policy knobs. logger may be nil,
// in which case a discard logger is used.
func New(t transport.Transport, cfg ssp.Config, logger *log.Logger) *Device {
	if logger == nil {
		logger = log.New(io.Discard)
	}

	fixedPrefix := keyex.DefaultFixedKeyPrefix
	if cfg.FixedKeyPrefix != ([8]byte{}) {
		fixedPrefix = cfg.FixedKeyPrefix
	}

	return &Device{
		sess:  session.New(t, cfg.Address, 2*time.Second),
		cfg:   cfg,
		keyex: keyex.NewWithFixedKeyPrefix(fixedPrefix),
		log:   logger,
	}
}

// Encrypted reports whether a session key has been negotiated; once true,
// every command is transparently wrapped in an encrypted sub-frame.
func (d *Device) Encrypted() bool { return d.keyed }

// exchange sends cmd and returns the raw response payload (status byte
// inclusive), transparently wrapping/unwrapping through ssp/encrypted when
// a session key is active. Key-negotiation commands (SetGenerator,
// SetModulus, RequestKeyExchange) are never themselves encrypted, since the
// device has no key yet when they're exchanged.
func (d *Device) exchange(cmd message.Command) ([]byte, error) {
	if !d.keyed || isKeyNegotiation(cmd.Opcode()) {
		d.log.Debug("sending plaintext command", "opcode", cmd.Opcode())
		return d.sendWithRetry(cmd.Encode())
	}

	wrapped, err := encrypted.Wrap(cmd.Encode(), d.sendCount, d.key)
	if err != nil {
		return nil, err
	}
	d.sendCount++

	outer := message.Encrypted(wrapped)
	respSection, err := d.sendWithRetry(outer.Encode())
	if err != nil {
		return nil, err
	}

	// The response payload leads with the Encrypted opcode byte, followed by
	// the section Wrap produced on the device side.
	if len(respSection) < 1 {
		return nil, ssp.ErrInvalidDataLength(len(respSection), 1)
	}
	plain, cnt, err := encrypted.Unwrap(respSection[1:], d.key)
	if err != nil {
		return nil, err
	}

	if d.cfg.CounterPolicy == ssp.CounterPolicyEnforce && cnt != d.recvCount {
		return nil, ssp.ErrCounterMismatch(cnt, d.recvCount)
	}
	d.recvCount = cnt + 1

	return plain, nil
}

// sendWithRetry sends payload, and on a transport timeout resends it under
// the same (untoggled) sequence identity up to cfg.RetryLimit times — the
// façade, not ssp/session, owns this per spec §4.4: a device that missed the
// original frame is required to replay its prior response verbatim for an
// identical sequence byte, so a resend is safe to retry blindly.
func (d *Device) sendWithRetry(payload []byte) ([]byte, error) {
	resp, err := d.sess.Send(payload)
	for attempt := 0; isTimeout(err) && attempt < d.cfg.RetryLimit; attempt++ {
		d.log.Warn("resending after timeout", "attempt", attempt+1)
		resp, err = d.sess.Resend(payload)
	}
	return resp, err
}

func isTimeout(err error) bool {
	var sspErr *ssp.Error
	return errors.As(err, &sspErr) && sspErr.Kind == ssp.KindTransport
}

func isKeyNegotiation(op message.Opcode) bool {
	switch op {
	case message.OpSetGenerator, message.OpSetModulus, message.OpRequestKeyExchange:
		return true
	default:
		return false
	}
}

// call sends cmd, parses the response as expected's variant, and returns an
// error for a protocol-level rejection status (anything but OK/DeviceReset).
func (d *Device) call(cmd message.Command) (message.Variant, error) {
	raw, err := d.exchange(cmd)
	if err != nil {
		return nil, err
	}

	variant, err := message.ParseResponse(cmd.Opcode(), raw)
	if err != nil {
		return nil, err
	}

	st := variant.Status()
	if !st.IsOK() && !st.IsDeviceReset() {
		return variant, ssp.ErrProtocol(st)
	}

	return variant, nil
}

// Reset sends the device reset command.
func (d *Device) Reset() error {
	_, err := d.call(message.Reset())
	return err
}

// Sync resynchronises the sequence flag to the device's expectation,
// per §4.4: a Sync always expects the device to answer regardless of the
// caller's locally tracked flag.
func (d *Device) Sync() error {
	_, err := d.call(message.Sync())
	return err
}

// Enable enables note/coin acceptance.
func (d *Device) Enable() error {
	_, err := d.call(message.Enable())
	return err
}

// Disable disables note/coin acceptance.
func (d *Device) Disable() error {
	_, err := d.call(message.Disable())
	return err
}

// HostProtocolVersion declares the host's supported protocol version.
func (d *Device) HostProtocolVersion(version byte) error {
	_, err := d.call(message.HostProtocolVersion(version))
	return err
}

// SetupRequest queries the device's unit type, firmware, country code, and
// channel layout, and updates the global channels table (ssp/channels) with
// the reported per-channel values.
func (d *Device) SetupRequest() (message.SetupRequestResponse, error) {
	v, err := d.call(message.SetupRequest())
	if err != nil {
		return message.SetupRequestResponse{}, err
	}
	resp := v.(message.SetupRequestResponse)

	if err := d.configureChannelsFromSetup(resp); err != nil {
		d.log.Warn("failed to update configured channels", "err", err)
	}

	return resp, nil
}

func (d *Device) configureChannelsFromSetup(resp message.SetupRequestResponse) error {
	values := make([]uint32, len(resp.ChannelValues))
	for i, v := range resp.ChannelValues {
		values[i] = uint32(v) * resp.ValueMultiplier
	}
	if len(resp.ChannelValuesLong) == len(values) {
		copy(values, resp.ChannelValuesLong)
	}

	tbl, err := channels.Lock()
	if err != nil {
		return err
	}
	defer tbl.Unlock()

	return tbl.Configure(values)
}

// Poll retrieves pending device events without acknowledging them.
func (d *Device) Poll() ([]poll.Event, error) {
	v, err := d.call(message.Poll())
	if err != nil {
		return nil, err
	}
	return v.(message.PollResponse).Events, nil
}

// PollWithAck retrieves pending events, implicitly acknowledging the
// previous event set (§4.7: required after a credit/reject event before
// the device will report further events).
func (d *Device) PollWithAck() ([]poll.Event, error) {
	v, err := d.call(message.PollWithAck())
	if err != nil {
		return nil, err
	}
	return v.(message.PollResponse).Events, nil
}

// EventAck acknowledges the most recent poll event explicitly.
func (d *Device) EventAck() error {
	_, err := d.call(message.EventAck())
	return err
}

// Reject instructs the device to reject the note currently being validated.
func (d *Device) Reject() error {
	_, err := d.call(message.Reject())
	return err
}

// Hold asks the device to hold a note at the escrow position.
func (d *Device) Hold() error {
	_, err := d.call(message.Hold())
	return err
}

// SetInhibits sets the per-channel accept/inhibit bitmask.
func (d *Device) SetInhibits(masks []byte) error {
	_, err := d.call(message.SetInhibits(masks))
	return err
}

// ChannelValueData fetches the live per-channel raw values and updates the
// global channels table.
func (d *Device) ChannelValueData() (message.ChannelValueDataResponse, error) {
	v, err := d.call(message.ChannelValueData())
	if err != nil {
		return message.ChannelValueDataResponse{}, err
	}
	resp := v.(message.ChannelValueDataResponse)

	tbl, err := channels.Lock()
	if err == nil {
		values := make([]uint32, len(resp.ChannelValues))
		for i, b := range resp.ChannelValues {
			values[i] = uint32(b)
		}
		if cfgErr := tbl.Configure(values); cfgErr != nil {
			d.log.Warn("failed to update configured channels", "err", cfgErr)
		}
		tbl.Unlock()
	}

	return resp, nil
}

// SerialNumber reads the device's 4-byte serial number.
func (d *Device) SerialNumber() ([4]byte, error) {
	v, err := d.call(message.SerialNumber())
	if err != nil {
		return [4]byte{}, err
	}
	var sn [4]byte
	copy(sn[:], v.(message.GenericResponse).Extra)
	return sn, nil
}

// UnitData reads the device's unit-data block (firmware/country/value-scale
// summary, a precursor to the richer SetupRequest on older firmware).
func (d *Device) UnitData() ([]byte, error) {
	v, err := d.call(message.UnitData())
	if err != nil {
		return nil, err
	}
	return v.(message.GenericResponse).Extra, nil
}

// DatasetVersion reads the loaded currency-dataset version string.
func (d *Device) DatasetVersion() (string, error) {
	v, err := d.call(message.DatasetVersion())
	if err != nil {
		return "", err
	}
	return v.(message.DatasetVersionResponse).Version, nil
}

// ConfigureBezel sets the validator's bezel LED color and volatility.
func (d *Device) ConfigureBezel(r, g, b byte, volatile bool) error {
	_, err := d.call(message.ConfigureBezel(r, g, b, volatile))
	return err
}

// PayoutByDenomination instructs a recycler to pay out the given
// denominations. test selects a dry-run that validates feasibility without
// dispensing.
func (d *Device) PayoutByDenomination(denoms []message.PayoutDenomination, test bool) error {
	_, err := d.call(message.PayoutByDenomination(denoms, test))
	return err
}

// EnablePayout arms recycler payout with the given device-specific option.
func (d *Device) EnablePayout(option byte) error {
	_, err := d.call(message.EnablePayout(option))
	return err
}

// DisablePayout disarms recycler payout.
func (d *Device) DisablePayout() error {
	_, err := d.call(message.DisablePayout())
	return err
}

// Empty instructs the device to empty all channels to the cashbox.
func (d *Device) Empty() error {
	_, err := d.call(message.Empty())
	return err
}

// SmartEmpty instructs a recycler to empty while retaining a working float.
func (d *Device) SmartEmpty() error {
	_, err := d.call(message.SmartEmpty())
	return err
}

// LastRejectCode reads the vendor-specific reason code for the most recent
// rejected note.
func (d *Device) LastRejectCode() (byte, error) {
	v, err := d.call(message.LastRejectCode())
	if err != nil {
		return 0, err
	}
	extra := v.(message.GenericResponse).Extra
	if len(extra) < 1 {
		return 0, ssp.ErrInvalidDataLength(len(extra), 1)
	}
	return extra[0], nil
}

// SetGenerator begins key negotiation by supplying the host-chosen
// generator. Call SetModulus and RequestKeyExchange next.
func (d *Device) SetGenerator(g uint64) error {
	d.keyex.SetGenerator(g)
	_, err := d.call(message.SetGenerator(g))
	return err
}

// SetModulus supplies the host-chosen modulus.
func (d *Device) SetModulus(n uint64) error {
	d.keyex.SetModulus(n)
	_, err := d.call(message.SetModulus(n))
	return err
}

// RequestKeyExchange completes Diffie-Hellman negotiation: it computes the
// host's intermediate key, sends it, derives the AES session key from the
// device's returned intermediate key, and marks the Device as encrypted for
// every subsequent command.
func (d *Device) RequestKeyExchange() error {
	hostInter, err := d.keyex.BeginKeyExchange()
	if err != nil {
		return err
	}

	v, err := d.call(message.RequestKeyExchange(hostInter))
	if err != nil {
		return err
	}

	extra := v.(message.GenericResponse).Extra
	if len(extra) < 8 {
		return ssp.ErrInvalidDataLength(len(extra), 8)
	}
	deviceInter := leU64(extra)

	d.key = d.keyex.ObserveDeviceIntermediate(deviceInter)
	d.keyed = true
	d.sendCount = 0
	d.recvCount = 0

	d.log.Info("encrypted session established")

	return nil
}

// SetEncryptionKey overrides the fixed key prefix used in session-key
// derivation. Must be called before RequestKeyExchange.
func (d *Device) SetEncryptionKey(fixedKey uint64) error {
	_, err := d.call(message.SetEncryptionKey(fixedKey))
	return err
}

// EncryptionReset tears down the negotiated session key; subsequent
// commands revert to plaintext until a fresh key exchange completes.
func (d *Device) EncryptionReset() error {
	_, err := d.call(message.EncryptionReset())
	d.keyex.Reset()
	d.keyed = false
	d.sendCount = 0
	d.recvCount = 0
	return err
}

// ProgramFirmware prepares the device to receive a firmware image, carrying
// the vendor's 2-byte firmware code.
func (d *Device) ProgramFirmware(code uint16) error {
	_, err := d.call(message.ProgramFirmware(code))
	return err
}

// DownloadFirmwareHeader transmits the 128-byte firmware header as the
// sentinel first data packet of a firmware download.
func (d *Device) DownloadFirmwareHeader(header [128]byte) error {
	_, err := d.call(message.DownloadDataPacket(message.FirmwareHeaderBlock, 0, header[:]))
	return err
}

// DownloadDataPacket transmits one firmware code-line packet identified by
// block and line.
func (d *Device) DownloadDataPacket(block uint32, line byte, data []byte) error {
	_, err := d.call(message.DownloadDataPacket(block, line, data))
	return err
}

func leU64(b []byte) uint64 {
	var v uint64
	for i := 0; i < 8; i++ {
		v |= uint64(b[i]) << (8 * i)
	}
	return v
}
