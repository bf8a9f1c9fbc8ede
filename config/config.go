package config

import "time"

const NAME = "calyx"

const VERSION_MAJOR = 0
const VERSION_MINOR = 4
const VERSION_PATCH = 1

// Token amounts are expressed in atomic units of 1e-18 (attoCLX). Human-readable
// output truncates to ATOMIC decimal digits.
const ATOMIC = 18
const COIN = 1_000_000_000_000_000_000 // 1e18

// Gas floors enforced client-side. The chain accepts lower values, but a
// transaction priced below these is never selected by validators.
const MIN_GAS_FEE_CAP = 100_000
const MIN_GAS_PREMIUM = 100
const BLOCK_GAS_LIMIT = 10_000_000_000

// Maximum payload accepted by a timehub push (500 KiB).
const MAX_TIMEHUB_PAYLOAD_SIZE = 500 * 1024

// Maximum object size accepted by a bucket add (5 GB).
const MAX_OBJECT_SIZE = 5_000_000_000

// Metadata limits enforced by the bucket actor, duplicated here so invalid
// transactions are rejected before broadcast.
const MAX_METADATA_KEY_SIZE = 32
const MAX_METADATA_VALUE_SIZE = 128

// Default page size for bucket listings when the caller passes limit 0.
const MAX_LIST_LIMIT = 1000

const RPC_TIMEOUT = 60 * time.Second
const COMMIT_TIMEOUT = 90 * time.Second

// Delimiter conventionally used to namespace bucket keys.
const DEFAULT_DELIMITER = "/"

// Textual address encodings: the native hex form carries HEX_ADDRESS_PREFIX,
// the delegated actor form carries DELEGATED_ADDRESS_PREFIX.
const HEX_ADDRESS_PREFIX = "0x"
const DELEGATED_ADDRESS_PREFIX = "cx1"
