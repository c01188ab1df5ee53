// Package assemblyservice implements shareholder assembly registration
// inside the governance context.
//
// The module owns the cap table import, per-shareholder attendance marking
// with its append-only history, proxy (poder) registration with capital
// snapshots, the live quorum calculation, and the election lifecycle with
// its one-shot voting window. Business rules live in the domain and
// application layers; persistence and transport sit behind ports.
package assemblyservice
