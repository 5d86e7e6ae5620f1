// Package engine wires command validation, state loading, decision making,
// and event persistence into a single write path for scan envelope streams.
package engine
