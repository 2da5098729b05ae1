// Package record defines the unified position record produced by all parsers.
package record

// PositionRecord is a single genomic position fact extracted from an input
// file. Exactly one parser shape populates it: VCF rows fill Ref/Alt and
// optionally RSID/Quality/Genotype, genotype-array rows fill RSID/Genotype,
// FASTA bases fill Ref only. Records are write-once; nothing mutates them
// after the parser returns them.
type PositionRecord struct {
	Chrom      string   // chromosome or sequence label, exactly as in the source
	Pos        int64    // 1-based position (genomic coordinate, or offset within a FASTA sequence)
	Ref        string   // reference allele or single base
	Alt        string   // alternate allele (VCF only)
	Genotype   string   // zygosity call (VCF first sample, or array column)
	RSID       string   // reference SNP identifier; empty when the source had none
	SourceFile string   // name of the originating file
	Quality    *float64 // VCF quality score; nil when absent or non-numeric
}
