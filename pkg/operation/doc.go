/*
Package operation implements the sync processor: it relocates new files from an
input directory to an output directory and remembers their names.

	+-------------+
	|   Operator  |
	| (one job)   |
	+------+------+
	       |
	+------+------+------+
	|             |      |
	+-----+  +----+---+  +-----+
	|scan |  |relocate|  |store|
	+-----+  +--------+  +-----+

🎯 Purpose:
- Lists regular files directly in the input directory, sorted by name
- Relocates each name not yet in the record set (move, copy or copy-then-delete)
- Records relocated names and saves the set once per pass
- Clears the input directory or the records on request

🔄 Flow of ProcessFiles:
1. Load the record set from the store
2. Scan the input directory, dropping the records file and non-regular entries
3. Report ignored names, skip recorded ones, relocate the rest
4. Delete the source when asked to or when the mode says so
5. Save the set, even if the pass aborted

⚡ Errors:
Every failure is classified into a Kind (not found, permission denied,
already exists, other) and looked up in a PolicyTable per Step. A policy
either ignores the error, logs it and continues, or aborts the pass with a
*StepError. Name collisions in the output directory always abort.

🤝 Interfaces:
- Operator: the processor for one job
- records.Store: where processed names live
- afero.Fs: the filesystem files move on

🔍 Example:

	op, err := operation.New(operation.Options{
		InDir:  "inbox",
		OutDir: "archive",
		Store:  records.NewTextStore(afero.NewOsFs(), "records/files_added.txt"),
		Mode:   relocate.ModeMove,
	})
	if err != nil {
		return err
	}
	if err := op.Initialize(ctx); err != nil {
		return err
	}
	summary, err := op.ProcessFiles(ctx, false)

Several jobs run through an OperationRunner, one after another or
concurrently when none of their paths overlap.
*/
package operation
