/*
Package config loads filesync job definitions.

	            +-------------+
	            |   Config    |
	            |   (Jobs)    |
	            +------+------+
	                   |
	      +------------+------------+
	      |            |            |
	+-----+----+  +----+----+  +----+----+
	|   YAML   |  |   HCL   |  |  JSON   |
	|  Parser  |  | Parser  |  | Parser  |
	+----------+  +---------+  +---------+

🎯 Purpose:
- Reads a job file and picks the parser by file extension
- Resolves relative job paths against the job file's directory
- Validates each job and fills its defaults

🔄 Flow:
1. Read the file through an afero.Fs
2. Parse it (a file named .filesync is tried as YAML, then HCL)
3. Resolve relative paths
4. Validate: required paths, transfer mode, records backend, unique names

📝 Defaults:
- name: base name of the input directory
- mode: move
- records_backend: bolt for .db and .bolt records files, text otherwise

🔍 Example (HCL):

	async = true

	job "scans" {
	  in_directory  = "${env.HOME}/scans/incoming"
	  out_directory = "/archive/scans"
	  records_file  = "/archive/scans/.records.txt"
	  mode          = "copy"
	  ignore        = ["*.part", ".*"]
	}
*/
package config
