//Package flatty converts typed object graphs into primitive trees of maps,
//sequences, scalars and nil, and reconstructs typed instances from such
//trees, optionally merging onto existing instances. Conversion is driven by a
//registry of converters keyed by declared type; the registry is the single
//dispatch authority for every recursive step.
package flatty
