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

// snmpq is a one-shot query tool: it runs a single get, bulk, or walk
// against a device through the limiter, cache, and session pool, and
// prints the result as JSON.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/oidyssey/oidyssey/pkg/logger"
	"github.com/oidyssey/oidyssey/pkg/models"
	"github.com/oidyssey/oidyssey/pkg/query"
	"github.com/oidyssey/oidyssey/pkg/session"
	"github.com/oidyssey/oidyssey/pkg/snmputil"
)

var errUsage = fmt.Errorf("usage: snmpq [flags] OID [OID...]")

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	var (
		host           = flag.String("host", "", "Device host or IP address")
		port           = flag.Uint("port", 161, "Device UDP port")
		version        = flag.String("version", "v2c", "SNMP version: v1, v2c, or v3")
		community      = flag.String("community", "public", "Community string (v1/v2c)")
		username       = flag.String("username", "", "Security name (v3)")
		authProto      = flag.String("auth-protocol", "", "Authentication protocol (v3): MD5, SHA, SHA256...")
		authPass       = flag.String("auth-password", "", "Authentication passphrase (v3)")
		privProto      = flag.String("priv-protocol", "", "Privacy protocol (v3): DES, AES, AES256...")
		privPass       = flag.String("priv-password", "", "Privacy passphrase (v3)")
		op             = flag.String("op", "get", "Operation: get, bulk, or walk")
		timeout        = flag.Duration("timeout", 5*time.Second, "Per-request transport timeout")
		retries        = flag.Int("retries", 1, "Transport retries")
		nonRepeaters   = flag.Uint("non-repeaters", 0, "Bulk non-repeaters")
		maxRepetitions = flag.Uint("max-repetitions", 10, "Bulk max repetitions")
		maxResults     = flag.Int("max-results", 0, "Walk result ceiling (0 = unbounded)")
		debug          = flag.Bool("debug", false, "Enable debug logging")
	)

	flag.Parse()

	if *host == "" || flag.NArg() == 0 {
		flag.Usage()
		return errUsage
	}

	appLogger, err := logger.New(&logger.Config{Debug: *debug, Output: "stderr"})
	if err != nil {
		return err
	}

	creds := &models.Credentials{
		Version:         models.SNMPVersion(*version),
		Community:       *community,
		Username:        *username,
		AuthProtocol:    *authProto,
		AuthPassword:    *authPass,
		PrivacyProtocol: *privProto,
		PrivacyPassword: *privPass,
	}

	factory := snmputil.NewClientFactory(&snmputil.ClientConfig{
		Timeout: models.Duration(*timeout),
		Retries: *retries,
	}, appLogger)

	pool := session.NewPool(nil, factory, appLogger)
	defer pool.Stop()

	// A one-shot tool has no use for a limiter window or a warm cache.
	executor, err := query.NewExecutor(pool, nil, nil, nil, appLogger)
	if err != nil {
		return err
	}

	ctx := context.Background()
	target := session.Target{Host: *host, Port: uint16(*port)}
	oids := flag.Args()

	var result *query.Result

	switch *op {
	case "get":
		result, err = executor.Get(ctx, target, creds, oids)
	case "bulk":
		result, err = executor.GetBulk(ctx, target, creds, oids, uint8(*nonRepeaters), uint8(*maxRepetitions))
	case "walk":
		result, err = executor.Walk(ctx, target, creds, oids[0], *maxResults)
	default:
		return fmt.Errorf("%w: unknown operation %q", errUsage, *op)
	}

	if err != nil {
		return err
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")

	return encoder.Encode(result)
}
