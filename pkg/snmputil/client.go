/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package snmputil

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gosnmp/gosnmp"

	"github.com/oidyssey/oidyssey/pkg/logger"
	"github.com/oidyssey/oidyssey/pkg/models"
	"github.com/oidyssey/oidyssey/pkg/session"
)

const (
	defaultTimeout        = 5 * time.Second
	defaultRetries        = 1
	defaultMaxRepetitions = 10
)

// errWalkLimitReached stops a walk once the caller's result ceiling is hit.
// It never escapes this package.
var errWalkLimitReached = errors.New("walk result limit reached")

// ClientConfig tunes the transport behavior of handles opened by the factory.
type ClientConfig struct {
	Timeout models.Duration `json:"timeout,omitempty"`
	Retries int             `json:"retries,omitempty"`
}

// ClientFactory opens gosnmp-backed handles for the session pool.
type ClientFactory struct {
	timeout time.Duration
	retries int
	logger  logger.Logger
}

// NewClientFactory creates a factory with the given transport settings.
// Zero values fall back to defaults.
func NewClientFactory(config *ClientConfig, log logger.Logger) *ClientFactory {
	timeout := defaultTimeout
	retries := defaultRetries

	if config != nil {
		if d := config.Timeout.Duration(); d > 0 {
			timeout = d
		}

		if config.Retries > 0 {
			retries = config.Retries
		}
	}

	return &ClientFactory{
		timeout: timeout,
		retries: retries,
		logger:  log,
	}
}

// OpenHandle implements session.HandleFactory. It builds and connects a
// client for the target using the supplied credentials.
func (f *ClientFactory) OpenHandle(ctx context.Context, target session.Target, creds *models.Credentials) (session.Handle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	client := &gosnmp.GoSNMP{
		Target:             target.Host,
		Port:               target.Port,
		Timeout:            f.timeout,
		Retries:            f.retries,
		MaxOids:            gosnmp.MaxOids,
		MaxRepetitions:     defaultMaxRepetitions,
		ExponentialTimeout: true,
	}

	if err := configureClientVersion(client, creds); err != nil {
		return nil, err
	}

	if err := client.Connect(); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrConnectFailed, err)
	}

	return &clientHandle{client: client}, nil
}

// configureClientVersion sets up the client based on the version in the credentials.
func configureClientVersion(client *gosnmp.GoSNMP, creds *models.Credentials) error {
	switch creds.Version {
	case models.SNMPVersion1:
		client.Version = gosnmp.Version1
		client.Community = creds.Community
	case models.SNMPVersion2c:
		client.Version = gosnmp.Version2c
		client.Community = creds.Community
	case models.SNMPVersion3:
		client.Version = gosnmp.Version3

		usm := &gosnmp.UsmSecurityParameters{
			UserName: creds.Username,
		}

		configureV3Authentication(usm, creds)
		configureV3Privacy(usm, creds)

		client.SecurityParameters = usm
		client.MsgFlags = gosnmp.AuthPriv
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedSNMPVersion, creds.Version)
	}

	return nil
}

// configureV3Authentication sets up the authentication protocol for SNMPv3.
func configureV3Authentication(usm *gosnmp.UsmSecurityParameters, creds *models.Credentials) {
	switch strings.ToUpper(creds.AuthProtocol) {
	case "MD5":
		usm.AuthenticationProtocol = gosnmp.MD5
		usm.AuthenticationPassphrase = creds.AuthPassword
	case "SHA":
		usm.AuthenticationProtocol = gosnmp.SHA
		usm.AuthenticationPassphrase = creds.AuthPassword
	case "SHA224":
		usm.AuthenticationProtocol = gosnmp.SHA224
		usm.AuthenticationPassphrase = creds.AuthPassword
	case "SHA256":
		usm.AuthenticationProtocol = gosnmp.SHA256
		usm.AuthenticationPassphrase = creds.AuthPassword
	case "SHA384":
		usm.AuthenticationProtocol = gosnmp.SHA384
		usm.AuthenticationPassphrase = creds.AuthPassword
	case "SHA512":
		usm.AuthenticationProtocol = gosnmp.SHA512
		usm.AuthenticationPassphrase = creds.AuthPassword
	}
}

// configureV3Privacy sets up the privacy protocol for SNMPv3.
func configureV3Privacy(usm *gosnmp.UsmSecurityParameters, creds *models.Credentials) {
	switch strings.ToUpper(creds.PrivacyProtocol) {
	case "DES":
		usm.PrivacyProtocol = gosnmp.DES
		usm.PrivacyPassphrase = creds.PrivacyPassword
	case "AES":
		usm.PrivacyProtocol = gosnmp.AES
		usm.PrivacyPassphrase = creds.PrivacyPassword
	case "AES192":
		usm.PrivacyProtocol = gosnmp.AES192
		usm.PrivacyPassphrase = creds.PrivacyPassword
	case "AES256":
		usm.PrivacyProtocol = gosnmp.AES256
		usm.PrivacyPassphrase = creds.PrivacyPassword
	}
}

// clientHandle adapts a connected gosnmp client to the session.Handle
// interface.
type clientHandle struct {
	client *gosnmp.GoSNMP
}

func (h *clientHandle) Get(ctx context.Context, oids []string) ([]models.VarBind, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	packet, err := h.client.Get(oids)
	if err != nil {
		return nil, err
	}

	return convertVariables(packet.Variables)
}

func (h *clientHandle) GetBulk(ctx context.Context, oids []string, nonRepeaters, maxRepetitions uint8) ([]models.VarBind, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	packet, err := h.client.GetBulk(oids, nonRepeaters, uint32(maxRepetitions))
	if err != nil {
		return nil, err
	}

	return convertVariables(packet.Variables)
}

func (h *clientHandle) Walk(ctx context.Context, rootOID string, maxResults int, fn func(models.VarBind) error) error {
	count := 0

	walkFn := func(pdu gosnmp.SnmpPDU) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		vb, err := pduToVarBind(pdu)
		if err != nil {
			return err
		}

		if err := fn(vb); err != nil {
			return err
		}

		count++
		if maxResults > 0 && count >= maxResults {
			return errWalkLimitReached
		}

		return nil
	}

	var err error

	// GETBULK is only available from v2c on.
	if h.client.Version == gosnmp.Version1 {
		err = h.client.Walk(rootOID, walkFn)
	} else {
		err = h.client.BulkWalk(rootOID, walkFn)
	}

	if errors.Is(err, errWalkLimitReached) {
		return nil
	}

	return err
}

func (h *clientHandle) Close() {
	if h.client.Conn != nil {
		_ = h.client.Conn.Close()
	}
}

func convertVariables(variables []gosnmp.SnmpPDU) ([]models.VarBind, error) {
	varbinds := make([]models.VarBind, 0, len(variables))

	for _, pdu := range variables {
		vb, err := pduToVarBind(pdu)
		if err != nil {
			return nil, err
		}

		varbinds = append(varbinds, vb)
	}

	return varbinds, nil
}
