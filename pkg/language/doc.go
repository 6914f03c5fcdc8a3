// Package language holds per-language descriptors and the processing path
// that binds a descriptor to its selected G2P engine.
//
// A Descriptor names an engine by id (SelectedG2P) and owns the payload
// passed to it (G2PConfig). Resolution is lazy: Resolve looks the id up at
// conversion time and reports ErrNoConverter when it is empty or missing.
//
//	descriptors, err := language.LoadDescriptors("languages.yaml")
//	proc := language.NewProcessor(g2p.Default())
//	out, err := proc.Process(ctx, descriptors[0], []string{"sakura"})
//	if language.IsNoConverter(err) {
//		// engine not installed yet
//	}
package language
