/*
Package status tracks what a sync pass did and reports it.

	            +-------------+
	            |   Tracker   |
	            |  (per pass) |
	            +------+------+
	                   |
	      +-----------+-----------+
	      |                       |
	+-----+-----+           +----+----+
	|  Summary  |           | Render  |
	|  (counts) |           | (pterm) |
	+-----------+           +---------+

🎯 Purpose:
- Records one outcome per input file (relocated, skipped, ignored, failed)
- Records follow-up outcomes of the delete step (deleted, not found)
- Reports progress through zerolog at debug level
- Renders summaries and dry-run listings as tables

🔄 Flow:
1. The processor calls Start with the number of candidates
2. Each file is tracked as it is handled
3. Abort marks a pass that stopped early
4. Finish returns an independent copy of the Summary

🤝 Interfaces:
- FileFormatter: formats outcome and progress lines

🔍 Example:

	tracker := status.NewTracker("inbox")
	tracker.Start(ctx, len(files))
	tracker.Track(ctx, "a.txt", status.OutcomeRelocated, nil)
	summary := tracker.Finish(ctx)

	table, err := status.RenderSummary(summary)
*/
package status
