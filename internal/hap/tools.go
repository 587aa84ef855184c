package hap

// Helpers for declaring the tool table.

func pathParam(name, description string) Param {
	return Param{Name: name, Kind: KindString, Required: true, In: InPath, Description: description}
}

func queryParam(name string, kind Kind, description string) Param {
	return Param{Name: name, Kind: kind, In: InQuery, Description: description}
}

func bodyParam(name string, kind Kind, description string) Param {
	return Param{Name: name, Kind: kind, In: InBody, Description: description}
}

func (p Param) required() Param {
	p.Required = true
	return p
}

func (p Param) withDefault(v any) Param {
	p.Default = v
	return p
}

func (p Param) of(items Kind) Param {
	p.Items = items
	return p
}

func (p Param) sentAs(key string) Param {
	p.BodyKey = key
	return p
}

var (
	worksheetID = pathParam("worksheet_id", "Worksheet ID or alias")
	rowID       = pathParam("row_id", "Record (row) ID")
)

func pageSize(in Location) Param {
	return Param{Name: "pageSize", Kind: KindInteger, In: in, Description: "Number of items per page"}
}

func pageIndex(in Location) Param {
	return Param{Name: "pageIndex", Kind: KindInteger, In: in, Description: "Page number, starting at 1"}
}

// Catalog returns the built-in tool descriptors. The slice is freshly
// allocated on every call.
func Catalog() []Descriptor {
	return []Descriptor{
		// Application
		{
			Name:        "getAppInfo",
			Title:       "Get application info",
			Description: "Get the application's basic information, including its sections and the worksheets and custom pages inside them.",
			Method:      MethodGet,
			Path:        "/v3/app",
		},

		// Worksheets
		{
			Name:        "getWorksheetsList",
			Title:       "Get worksheet list",
			Description: "List all worksheets of the application.",
			Method:      MethodGet,
			Path:        "/v3/app/worksheets",
		},
		{
			Name:        "createWorksheet",
			Title:       "Create worksheet",
			Description: "Create a new worksheet with the given name and field definitions.",
			Method:      MethodPost,
			Path:        "/v3/app/worksheets",
			Params: []Param{
				bodyParam("name", KindString, "Worksheet name").required(),
				bodyParam("alias", KindString, "Worksheet alias"),
				bodyParam("sectionId", KindString, "ID of the application section the worksheet is placed in"),
				bodyParam("fields", KindArray, "Field definitions (name, type, required, options...)").of(KindObject),
			},
		},
		{
			Name:        "getWorksheetStructure",
			Title:       "Get worksheet structure",
			Description: "Get the structure of a worksheet: its fields, their types and options, and its views.",
			Method:      MethodGet,
			Path:        "/v3/app/worksheets/{worksheet_id}",
			Params:      []Param{worksheetID},
		},
		{
			Name:        "updateWorksheet",
			Title:       "Update worksheet",
			Description: "Rename a worksheet and add, edit or remove its fields.",
			Method:      MethodPut,
			Path:        "/v3/app/worksheets/{worksheet_id}",
			Params: []Param{
				worksheetID,
				bodyParam("name", KindString, "New worksheet name"),
				bodyParam("alias", KindString, "New worksheet alias"),
				bodyParam("addFields", KindArray, "Field definitions to add").of(KindObject),
				bodyParam("editFields", KindArray, "Field definitions to change, identified by id").of(KindObject),
				bodyParam("removeFields", KindArray, "IDs of the fields to remove").of(KindString),
			},
		},
		{
			Name:        "deleteWorksheet",
			Title:       "Delete worksheet",
			Description: "Delete a worksheet and all of its records.",
			Method:      MethodDelete,
			Path:        "/v3/app/worksheets/{worksheet_id}",
			Params:      []Param{worksheetID},
		},

		// Records
		{
			Name:        "getRecordList",
			Title:       "Get record list",
			Description: "Query records of a worksheet with optional view, filter, sorting, keyword search and paging.",
			Method:      MethodPost,
			Path:        "/v3/app/worksheets/{worksheet_id}/rows/list",
			Params: []Param{
				worksheetID,
				bodyParam("viewId", KindString, "View ID; the view's own filters and sorting apply"),
				pageSize(InBody).withDefault(float64(50)),
				pageIndex(InBody).withDefault(float64(1)),
				bodyParam("fields", KindArray, "IDs or aliases of the fields to return").of(KindString),
				bodyParam("filter", KindObject, "Filter condition group"),
				bodyParam("sorts", KindArray, "Sort rules ({field, isAsc})").of(KindObject),
				bodyParam("search", KindString, "Keyword search across the record"),
				bodyParam("includeTotalCount", KindBoolean, "Return the total number of matching records"),
				bodyParam("includeSystemFields", KindBoolean, "Include system fields such as owner and creation time"),
				bodyParam("useFieldIdAsKey", KindBoolean, "Key the returned record fields by field ID instead of alias"),
			},
		},
		{
			Name:        "createRecord",
			Title:       "Create record",
			Description: "Create a record in a worksheet.",
			Method:      MethodPost,
			Path:        "/v3/app/worksheets/{worksheet_id}/rows",
			Params: []Param{
				worksheetID,
				bodyParam("fields", KindArray, "Field values as a list of {id, value}").of(KindObject).required(),
				bodyParam("triggerWorkflow", KindBoolean, "Trigger workflows bound to record creation").withDefault(true),
			},
		},
		{
			Name:        "getRecordDetails",
			Title:       "Get record details",
			Description: "Get a single record by its ID.",
			Method:      MethodGet,
			Path:        "/v3/app/worksheets/{worksheet_id}/rows/{row_id}",
			Params: []Param{
				worksheetID,
				rowID,
				queryParam("includeSystemFields", KindBoolean, "Include system fields such as owner and creation time"),
				queryParam("useFieldIdAsKey", KindBoolean, "Key the returned record fields by field ID instead of alias"),
			},
		},
		{
			Name:        "updateRecord",
			Title:       "Update record",
			Description: "Update field values of a record.",
			Method:      MethodPatch,
			Path:        "/v3/app/worksheets/{worksheet_id}/rows/{row_id}",
			Params: []Param{
				worksheetID,
				rowID,
				bodyParam("fields", KindArray, "Field values as a list of {id, value}").of(KindObject).required(),
				bodyParam("triggerWorkflow", KindBoolean, "Trigger workflows bound to record updates").withDefault(true),
			},
		},
		{
			Name:        "deleteRecord",
			Title:       "Delete record",
			Description: "Delete a record. Deleted records go to the recycle bin unless permanent is set.",
			Method:      MethodDelete,
			Path:        "/v3/app/worksheets/{worksheet_id}/rows/{row_id}",
			Params: []Param{
				worksheetID,
				rowID,
				bodyParam("triggerWorkflow", KindBoolean, "Trigger workflows bound to record deletion").withDefault(true),
				bodyParam("permanent", KindBoolean, "Delete permanently instead of moving to the recycle bin").withDefault(false),
			},
		},
		{
			Name:        "getRecordRelations",
			Title:       "Get related records",
			Description: "List the records linked to a record through a relation field.",
			Method:      MethodGet,
			Path:        "/v3/app/worksheets/{worksheet_id}/rows/{row_id}/relations/{field}",
			Params: []Param{
				worksheetID,
				rowID,
				pathParam("field", "ID or alias of the relation field"),
				pageSize(InQuery),
				pageIndex(InQuery),
				queryParam("useFieldIdAsKey", KindBoolean, "Key the returned record fields by field ID instead of alias"),
			},
		},
		{
			Name:        "getRecordPivotData",
			Title:       "Get pivot table data",
			Description: "Aggregate worksheet records into a pivot table by row and column dimensions.",
			Method:      MethodPost,
			Path:        "/v3/app/worksheets/{worksheet_id}/rows/pivot",
			Params: []Param{
				worksheetID,
				bodyParam("viewId", KindString, "View ID used to scope the records"),
				bodyParam("columns", KindArray, "Column dimensions ({field, ...})").of(KindObject),
				bodyParam("rows", KindArray, "Row dimensions ({field, ...})").of(KindObject),
				bodyParam("values", KindArray, "Aggregated values ({field, aggregation})").of(KindObject).required(),
				bodyParam("filter", KindObject, "Filter condition group"),
				bodyParam("sorts", KindArray, "Sort rules").of(KindObject),
				bodyParam("includeSummary", KindBoolean, "Include row and column totals"),
				pageSize(InBody),
				pageIndex(InBody),
			},
		},
		{
			Name:        "getRecordShareLink",
			Title:       "Get record share link",
			Description: "Create a public share link for a record.",
			Method:      MethodPost,
			Path:        "/v3/app/worksheets/{worksheet_id}/rows/{row_id}/share-link",
			Params: []Param{
				worksheetID,
				rowID,
				bodyParam("visibleFields", KindArray, "IDs of the fields visible through the link").of(KindString),
				bodyParam("expiredIn", KindInteger, "Link lifetime in seconds; omit for a permanent link"),
			},
		},
		{
			Name:        "getRecordLogs",
			Title:       "Get record logs",
			Description: "List the change log of a record.",
			Method:      MethodGet,
			Path:        "/v3/app/worksheets/{worksheet_id}/rows/{row_id}/logs",
			Params: []Param{
				worksheetID,
				rowID,
				queryParam("field", KindString, "Only changes of this field"),
				queryParam("operatorIds", KindString, "Comma-separated IDs of the operators"),
				queryParam("startDate", KindString, "Start of the time range (yyyy-MM-dd HH:mm:ss)"),
				queryParam("endDate", KindString, "End of the time range (yyyy-MM-dd HH:mm:ss)"),
				pageSize(InQuery),
				pageIndex(InQuery),
			},
		},
		{
			Name:        "getRecordDiscussions",
			Title:       "Get record discussions",
			Description: "List the discussion comments of a record.",
			Method:      MethodGet,
			Path:        "/v3/app/worksheets/{worksheet_id}/rows/{row_id}/discussions",
			Params: []Param{
				worksheetID,
				rowID,
				queryParam("keywords", KindString, "Keyword filter"),
				queryParam("onlyAttachments", KindBoolean, "Only comments with attachments"),
				pageSize(InQuery),
				pageIndex(InQuery),
			},
		},

		// Option sets
		{
			Name:        "getOptionsetList",
			Title:       "Get option set list",
			Description: "List the application's shared option sets.",
			Method:      MethodGet,
			Path:        "/v3/app/optionsets",
		},
		{
			Name:        "postCreateOptionset",
			Title:       "Create option set",
			Description: "Create a shared option set.",
			Method:      MethodPost,
			Path:        "/v3/app/optionsets",
			Params: []Param{
				bodyParam("name", KindString, "Option set name").required(),
				bodyParam("options", KindArray, "Options ({value, index, color, score})").of(KindObject).required(),
				bodyParam("enableColor", KindBoolean, "Enable option colors"),
				bodyParam("enableScore", KindBoolean, "Enable option scores"),
			},
		},
		{
			Name:        "updateOptionset",
			Title:       "Update option set",
			Description: "Update a shared option set.",
			Method:      MethodPut,
			Path:        "/v3/app/optionsets/{optionset_id}",
			Params: []Param{
				pathParam("optionset_id", "Option set ID"),
				bodyParam("name", KindString, "Option set name"),
				bodyParam("options", KindArray, "Options ({key, value, index, color, score, isDeleted})").of(KindObject),
				bodyParam("enableColor", KindBoolean, "Enable option colors"),
				bodyParam("enableScore", KindBoolean, "Enable option scores"),
			},
		},
		{
			Name:        "deleteOptionset",
			Title:       "Delete option set",
			Description: "Delete a shared option set.",
			Method:      MethodDelete,
			Path:        "/v3/app/optionsets/{optionset_id}",
			Params:      []Param{pathParam("optionset_id", "Option set ID")},
		},

		// Roles
		{
			Name:        "getRoleList",
			Title:       "Get role list",
			Description: "List the application's roles.",
			Method:      MethodGet,
			Path:        "/v3/app/roles",
			Params: []Param{
				queryParam("includeMembers", KindBoolean, "Include the members of each role"),
			},
		},
		{
			Name:        "createRole",
			Title:       "Create role",
			Description: "Create an application role with its permissions.",
			Method:      MethodPost,
			Path:        "/v3/app/roles",
			Params: []Param{
				bodyParam("name", KindString, "Role name").required(),
				bodyParam("description", KindString, "Role description"),
				bodyParam("permissionWay", KindInteger, "Permission mode (0 custom, 20 read-only, 30 read and add, 60 manage all)"),
				bodyParam("hideAppForMembers", KindBoolean, "Hide the application from the role's members"),
				bodyParam("sheets", KindArray, "Per-worksheet permissions").of(KindObject),
				bodyParam("pages", KindArray, "Per-page permissions").of(KindObject),
			},
		},
		{
			Name:        "getRoleDetails",
			Title:       "Get role details",
			Description: "Get a role with its permissions and members.",
			Method:      MethodGet,
			Path:        "/v3/app/roles/{role_id}",
			Params:      []Param{pathParam("role_id", "Role ID")},
		},
		{
			Name:        "deleteRole",
			Title:       "Delete role",
			Description: "Delete a role.",
			Method:      MethodDelete,
			Path:        "/v3/app/roles/{role_id}",
			Params:      []Param{pathParam("role_id", "Role ID")},
		},
		{
			Name:        "removeMemberFromRole",
			Title:       "Remove members from role",
			Description: "Remove users, departments, jobs or organization roles from an application role.",
			Method:      MethodDelete,
			Path:        "/v3/app/roles/{role_id}/members",
			Params: []Param{
				pathParam("role_id", "Role ID"),
				bodyParam("userIds", KindArray, "User IDs").of(KindString),
				bodyParam("departmentIds", KindArray, "Department IDs").of(KindString),
				bodyParam("departmentTreeIds", KindArray, "Department IDs including their sub-departments").of(KindString),
				bodyParam("jobIds", KindArray, "Job IDs").of(KindString),
				bodyParam("orgRoleIds", KindArray, "Organization role IDs").of(KindString),
			},
		},
		{
			Name:        "leaveAllRoles",
			Title:       "Leave all roles",
			Description: "Remove the current user from every role of the application.",
			Method:      MethodPost,
			Path:        "/v3/app/roles/leave-all",
		},

		// Workflows
		{
			Name:        "getWorkflowList",
			Title:       "Get workflow list",
			Description: "List the application's workflows.",
			Method:      MethodGet,
			Path:        "/v3/app/workflow/processes",
		},
		{
			Name:        "getWorkflowDetails",
			Title:       "Get workflow details",
			Description: "Get a workflow with its trigger and input parameters.",
			Method:      MethodGet,
			Path:        "/v3/app/workflow/processes/{process_id}",
			Params:      []Param{pathParam("process_id", "Workflow (process) ID")},
		},
		{
			Name:        "triggerWorkflow",
			Title:       "Trigger workflow",
			Description: "Trigger a webhook or process-hook workflow with input parameters.",
			Method:      MethodPost,
			Path:        "/v3/app/workflow/hooks/{process_id}",
			Params: []Param{
				pathParam("process_id", "Workflow (process) ID"),
				// The API expects the literal key "{inputs}".
				bodyParam("inputs", KindObject, "Workflow input parameters keyed by parameter name").required().sentAs("{inputs}"),
			},
		},

		// Organization
		{
			Name:        "findMember",
			Title:       "Find member",
			Description: "Find organization members by name, mobile phone or email.",
			Method:      MethodPost,
			Path:        "/v3/users/find",
			Params: []Param{
				bodyParam("name", KindString, "Member name").required(),
				bodyParam("mobilePhone", KindString, "Mobile phone number"),
				bodyParam("email", KindString, "Email address"),
			},
		},
		{
			Name:        "findDepartment",
			Title:       "Find department",
			Description: "Find organization departments by name.",
			Method:      MethodPost,
			Path:        "/v3/departments/find",
			Params: []Param{
				bodyParam("name", KindString, "Department name").required(),
			},
		},
		{
			Name:        "getRegions",
			Title:       "Get regions",
			Description: "Get administrative regions, optionally the children of one region or those matching a search.",
			Method:      MethodGet,
			Path:        "/v3/regions",
			Params: []Param{
				queryParam("id", KindString, "Parent region ID"),
				queryParam("search", KindString, "Region name search"),
			},
		},
	}
}

// Lookup returns the built-in descriptor with the given name.
func Lookup(name string) (Descriptor, bool) {
	for _, d := range Catalog() {
		if d.Name == name {
			return d, true
		}
	}
	return Descriptor{}, false
}
