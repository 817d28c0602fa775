package mcpserver

// Tool descriptions with interpretation guidance for LLMs.

func describeAnalyze() string {
	return `Finds structurally similar C# and Java types and duplicated method bodies.

USE WHEN:
- Looking for copy-pasted classes, records or structs before a refactor
- Checking a change for methods that repeat existing logic
- Comparing a branch or tag against the working tree (pass ref)

INTERPRETING RESULTS:
- Type distance counts member edits (added, removed or changed fields, properties, methods)
- Method distance is the edit distance between normalized bodies
- Distance 0 means identical after normalization; treat it as a definite duplicate
- NameA is always the later of the two declarations in scan order

METRICS RETURNED:
- similar_types: pairs of types with distance and locations
- dry_violations: pairs of methods with distance and locations
- summary: pair counts, flagged entities, flagged files (and files flagged by both passes), mean and percentile distances, skipped files`
}

func describeSimilarTypes() string {
	return `Reports pairs of C# and Java type declarations whose member lists are nearly the same.

USE WHEN:
- Spotting DTOs or entities that could share a base type or be merged
- Auditing a codebase for parallel class hierarchies

INTERPRETING RESULTS:
- Members are compared by kind, name and signature; order does not matter for equal sets
- Distance counts member-level edits; the default threshold is 2
- Raise type_threshold to find looser families of related types

METRICS RETURNED:
- similar_types: type names, distance, file and line of each declaration
- summary: type pairs, flagged types, distance statistics`
}

func describeDRYViolations() string {
	return `Reports methods whose bodies are the same or nearly the same as an earlier method.

USE WHEN:
- Finding logic that should be extracted into a shared helper
- Reviewing whether new code re-implements an existing method

INTERPRETING RESULTS:
- body_policy compact compares bodies with comments and whitespace removed
- body_policy tokens compares the token sequence, ignoring identifier spelling
- The default dry_threshold of 0 reports only exact duplicates
- Methods declared outside any type are named UnknownType.<method>

METRICS RETURNED:
- dry_violations: qualified method names, distance, file and line of each body
- summary: violation pairs, flagged methods, distance statistics`
}
