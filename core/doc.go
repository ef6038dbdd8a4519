// Package core contains the canonical case-notification domain contracts,
// entities, and runtime configuration. Lower-level adapters (stores, ZGW
// clients, transports) must depend on this package; core must not depend on
// store-specific or transport-specific adapters.
package core
